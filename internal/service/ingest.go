package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/drios/memedb/internal/domain"
	"github.com/drios/memedb/internal/logger"
	"github.com/drios/memedb/internal/repository"
	"github.com/drios/memedb/internal/storage"
	"github.com/drios/memedb/internal/tagger"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// DefaultConfidenceThreshold is the cutoff below which classifier tags are
// discarded. Scores are on the classifier's 0-100 scale and the comparison
// is strict: a tag at exactly the threshold is excluded.
const DefaultConfidenceThreshold = 50.0

// IngestService orchestrates the upload pipeline: validate, stage, upload,
// classify, filter, persist, clean up. All collaborators are injected so
// tests can substitute doubles.
type IngestService struct {
	repo       *repository.MemeRepository
	blobs      storage.BlobStore
	classifier tagger.Classifier
	logger     *logger.Logger
	uploadDir  string
	threshold  float64
}

// IngestServiceConfig holds configuration for the ingest service.
type IngestServiceConfig struct {
	UploadDir           string
	ConfidenceThreshold float64
}

// IngestRequest carries one inbound upload. Etiquetas is the raw
// comma-separated tags field; it is checked for presence but never parsed.
type IngestRequest struct {
	File        io.Reader
	Filename    string
	ContentType string
	Description string
	Usuario     string
	Etiquetas   string
}

// IngestResult is returned on a successful ingest.
type IngestResult struct {
	Ruta string   `json:"ruta"`
	Tags []string `json:"tags"`
}

// NewIngestService creates a new ingest orchestrator.
// Parameters:
//   - repo: metadata repository.
//   - blobs: blob store client.
//   - classifier: image tagging client.
//   - log: base logger.
//   - cfg: upload directory and confidence threshold; zero threshold uses
//     DefaultConfidenceThreshold.
// Returns:
//   - *IngestService: initialized service.
func NewIngestService(
	repo *repository.MemeRepository,
	blobs storage.BlobStore,
	classifier tagger.Classifier,
	log *logger.Logger,
	cfg *IngestServiceConfig,
) *IngestService {
	threshold := cfg.ConfidenceThreshold
	if threshold == 0 {
		threshold = DefaultConfidenceThreshold
	}
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	return &IngestService{
		repo:       repo,
		blobs:      blobs,
		classifier: classifier,
		logger:     log,
		uploadDir:  uploadDir,
		threshold:  threshold,
	}
}

func (s *IngestService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Ingest runs the upload pipeline for one request. From the caller's point
// of view the ingest is atomic: either a tagged meme exists afterwards, or
// nothing does (the one accepted inconsistency is an orphan blob when the
// metadata transaction fails and the rollback delete also fails).
// Parameters:
//   - ctx: context for cancellation and deadlines; callers should impose an
//     overall request deadline.
//   - req: inbound upload fields.
// Returns:
//   - *IngestResult: storage locator and accepted tag labels.
//   - error: a domain.PipelineError describing the failed step.
func (s *IngestService) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	// Preconditions, before any I/O
	if req.File == nil || req.Filename == "" {
		return nil, domain.NewValidationError("no file provided")
	}
	if req.Description == "" || req.Usuario == "" || req.Etiquetas == "" {
		return nil, domain.NewValidationError("descripcion, usuario and etiquetas are required")
	}

	// Stage the inbound stream under a per-request-unique name so two
	// concurrent uploads of the same filename cannot race on the scratch
	// file. The object key keeps the original filename.
	objectKey := filepath.Base(req.Filename)
	stagedPath, err := s.stage(req.File, objectKey)
	if err != nil {
		return nil, domain.NewStorageError("failed to stage uploaded file", err)
	}
	defer s.removeStaged(ctx, stagedPath)

	data, err := os.ReadFile(stagedPath)
	if err != nil {
		return nil, domain.NewStorageError("failed to read staged file", err)
	}

	// Upload to the blob store
	if err := s.blobs.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), req.ContentType); err != nil {
		return nil, domain.NewStorageError("failed to upload to blob store", err)
	}
	ruta := s.blobs.ObjectURL(objectKey)

	// Classify the staged local copy, not the remote one
	staged, err := os.Open(stagedPath)
	if err != nil {
		return nil, domain.NewTaggingError("failed to open staged file for classification", "", err)
	}
	predictions, err := s.classifier.Classify(ctx, objectKey, staged)
	staged.Close()
	if err != nil {
		if domain.KindOf(err) == domain.KindTagging {
			return nil, err
		}
		return nil, domain.NewTaggingError("failed to classify image", "", err)
	}

	accepted := s.filter(predictions)

	width, height, err := imageDimensions(data)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to decode image dimensions")
		width, height = 0, 0
	}

	meme := &domain.Meme{
		Description: req.Description,
		Ruta:        ruta,
		Usuario:     req.Usuario,
		Width:       width,
		Height:      height,
	}
	tags := make([]domain.Etiqueta, len(accepted))
	labels := make([]string, len(accepted))
	for i, p := range accepted {
		tags[i] = domain.Etiqueta{Etiqueta: p.Label, Confianza: p.Confidence}
		labels[i] = p.Label
	}

	if err := s.repo.CreateWithTags(ctx, meme, tags); err != nil {
		// Best-effort rollback of the uploaded blob so a failed ingest
		// does not leave an orphan object behind.
		if delErr := s.blobs.Delete(ctx, objectKey); delErr != nil {
			s.log(ctx).WithField("object_key", objectKey).
				WithError(delErr).Error("Failed to roll back blob upload")
		}
		return nil, domain.NewPersistenceError("failed to persist meme metadata", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldUsuario: req.Usuario,
		"meme_id":           meme.ID,
		"tags":              len(labels),
	}).Info("Meme ingested")

	return &IngestResult{Ruta: ruta, Tags: labels}, nil
}

// stage writes the inbound stream to the scratch directory and returns the
// staged path.
func (s *IngestService) stage(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.uploadDir, uuid.New().String()+"_"+filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close staged file: %w", err)
	}
	return path, nil
}

// removeStaged deletes the scratch file. Runs on every exit path after
// staging; failure is logged, never escalated to the caller.
func (s *IngestService) removeStaged(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log(ctx).WithField("path", path).WithError(err).Warn("Failed to remove staged file")
	}
}

// filter keeps predictions whose confidence strictly exceeds the threshold,
// lowercasing labels and dropping empty ones.
func (s *IngestService) filter(predictions []tagger.Prediction) []tagger.Prediction {
	kept := make([]tagger.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Confidence <= s.threshold {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(p.Label))
		if label == "" {
			continue
		}
		kept = append(kept, tagger.Prediction{Label: label, Confidence: p.Confidence})
	}
	return kept
}

func imageDimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
