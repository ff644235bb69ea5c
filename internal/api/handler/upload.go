package handler

import (
	"errors"
	"net/http"

	"github.com/drios/memedb/internal/domain"
	"github.com/drios/memedb/internal/service"
	"github.com/gin-gonic/gin"
)

// UploadHandler handles the meme upload endpoint.
type UploadHandler struct {
	ingest *service.IngestService
}

// NewUploadHandler creates a new upload handler.
// Parameters:
//   - ingest: ingest orchestrator.
// Returns:
//   - *UploadHandler: initialized handler.
func NewUploadHandler(ingest *service.IngestService) *UploadHandler {
	return &UploadHandler{ingest: ingest}
}

// Upload handles POST /upload. The multipart body must carry a file part
// plus descripcion, usuario, and etiquetas fields.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *UploadHandler) Upload(c *gin.Context) {
	req := &service.IngestRequest{
		Description: c.PostForm("descripcion"),
		Usuario:     c.PostForm("usuario"),
		Etiquetas:   c.PostForm("etiquetas"),
	}

	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader.Filename != "" {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to read uploaded file",
			})
			return
		}
		defer file.Close()
		req.File = file
		req.Filename = fileHeader.Filename
		req.ContentType = fileHeader.Header.Get("Content-Type")
	}

	result, err := h.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "meme uploaded successfully",
		"ruta":    result.Ruta,
		"tags":    result.Tags,
	})
}

// writeError maps a pipeline error to its HTTP status and response body,
// never exposing a raw internal error to the caller.
func writeError(c *gin.Context, err error) {
	body := gin.H{"error": errorMessage(err)}
	if details := domain.DetailsOf(err); details != "" {
		body["details"] = details
	}
	c.JSON(statusForKind(domain.KindOf(err)), body)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return "internal server error"
}
