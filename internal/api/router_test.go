package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/drios/memedb/internal/api"
	"github.com/drios/memedb/internal/api/middleware"
	"github.com/drios/memedb/internal/domain"
	"github.com/drios/memedb/internal/logger"
	"github.com/drios/memedb/internal/repository"
	"github.com/drios/memedb/internal/service"
	"github.com/drios/memedb/internal/tagger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubBlobStore struct {
	uploads []string
}

func (s *stubBlobStore) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *stubBlobStore) Delete(context.Context, string) error { return nil }

func (s *stubBlobStore) ObjectURL(key string) string {
	return "https://meme-storagee.s3.us-east-2.amazonaws.com/" + key
}

type stubClassifier struct {
	predictions []tagger.Prediction
	err         error
}

func (s *stubClassifier) Classify(context.Context, string, io.Reader) ([]tagger.Prediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.predictions, nil
}

func newTestRouter(t *testing.T, classifier tagger.Classifier) (*gin.Engine, *repository.MemeRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Meme{}, &domain.Etiqueta{}))

	repo := repository.NewMemeRepository(db)
	log := logger.New(nil)

	ingestService := service.NewIngestService(repo, &stubBlobStore{}, classifier, log,
		&service.IngestServiceConfig{UploadDir: t.TempDir()})
	searchService := service.NewSearchService(repo, log)

	router := api.SetupRouter(ingestService, searchService,
		middleware.CORSConfig{AllowAllOrigins: true}, "test")
	return router, repo
}

func multipartUpload(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadEndToEnd(t *testing.T) {
	router, repo := newTestRouter(t, &stubClassifier{
		predictions: []tagger.Prediction{
			{Label: "cat", Confidence: 92},
			{Label: "blurry", Confidence: 30},
		},
	})

	body, contentType := multipartUpload(t, map[string]string{
		"descripcion": "funny cat",
		"usuario":     "alice",
		"etiquetas":   "x",
	}, "f.png")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string   `json:"message"`
		Ruta    string   `json:"ruta"`
		Tags    []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, "https://meme-storagee.s3.us-east-2.amazonaws.com/f.png", resp.Ruta)
	assert.Equal(t, []string{"cat"}, resp.Tags)

	count, err := repo.CountMemes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUploadMissingFields(t *testing.T) {
	testCases := []struct {
		name     string
		fields   map[string]string
		filename string
	}{
		{"no file", map[string]string{"descripcion": "d", "usuario": "u", "etiquetas": "e"}, ""},
		{"no descripcion", map[string]string{"usuario": "u", "etiquetas": "e"}, "f.png"},
		{"no usuario", map[string]string{"descripcion": "d", "etiquetas": "e"}, "f.png"},
		{"no etiquetas", map[string]string{"descripcion": "d", "usuario": "u"}, "f.png"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, repo := newTestRouter(t, &stubClassifier{})

			body, contentType := multipartUpload(t, tc.fields, tc.filename)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")

			count, err := repo.CountMemes(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestUploadTaggingFailure(t *testing.T) {
	router, repo := newTestRouter(t, &stubClassifier{
		err: domain.NewTaggingError("tagging API returned non-success status", "rate limited", nil),
	})

	body, contentType := multipartUpload(t, map[string]string{
		"descripcion": "d", "usuario": "u", "etiquetas": "e",
	}, "f.png")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "rate limited")

	count, err := repo.CountMemes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchEndpoint(t *testing.T) {
	router, repo := newTestRouter(t, &stubClassifier{})
	ctx := context.Background()

	for _, desc := range []string{"Cat meme", "my CATegory", "concatenate", "dog"} {
		require.NoError(t, repo.CreateWithTags(ctx, &domain.Meme{
			Description: desc,
			Ruta:        "https://x/" + desc,
			Usuario:     "alice",
		}, nil))
	}

	t.Run("matches", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=cat", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var results []struct {
			Description string `json:"descripcion"`
			Usuario     string `json:"usuario"`
			Ruta        string `json:"ruta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		assert.Len(t, results, 3)
	})

	t.Run("missing q", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no matches", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=zebra", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubClassifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
