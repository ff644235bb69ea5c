package repository

import (
	"context"
	"strings"

	"github.com/drios/memedb/internal/domain"
	"gorm.io/gorm"
)

// MemeRepository handles meme and tag persistence.
type MemeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a new MemeRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MemeRepository: repository instance bound to db.
func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// CreateWithTags inserts a meme and its tags inside one transaction with a
// single commit boundary. Each tag is inserted only if no row with the same
// (meme_id, etiqueta) pair exists, so re-running the same set of labels for
// a meme never creates duplicates. On any failure the whole transaction
// rolls back and no partially-visible meme remains.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meme: meme record to persist; ID is populated on success.
//   - tags: tag rows to attach; MemeID is filled in from the created meme.
// Returns:
//   - error: non-nil if the transaction fails.
func (r *MemeRepository) CreateWithTags(ctx context.Context, meme *domain.Meme, tags []domain.Etiqueta) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meme).Error; err != nil {
			return err
		}
		for i := range tags {
			tags[i].MemeID = meme.ID
			exists, err := tagExistsTx(tx, meme.ID, tags[i].Etiqueta)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := tx.Create(&tags[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TagExists reports whether a (meme, label) pair is already stored.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: owning meme ID.
//   - label: tag label text.
// Returns:
//   - bool: true if the pair exists.
//   - error: non-nil if the lookup fails.
func (r *MemeRepository) TagExists(ctx context.Context, memeID uint, label string) (bool, error) {
	return tagExistsTx(r.db.WithContext(ctx), memeID, label)
}

func tagExistsTx(tx *gorm.DB, memeID uint, label string) (bool, error) {
	var count int64
	if err := tx.Model(&domain.Etiqueta{}).
		Where("meme_id = ? AND etiqueta = ?", memeID, label).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertTag stores a single tag row for a meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tag: tag row to insert.
// Returns:
//   - error: non-nil if the insert fails.
func (r *MemeRepository) InsertTag(ctx context.Context, tag *domain.Etiqueta) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// SearchByDescription finds memes whose description contains the query as a
// case-insensitive substring (both-side wildcard). LOWER() on both sides
// keeps the semantics identical across SQLite and PostgreSQL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: substring to match; leading/trailing space is ignored.
// Returns:
//   - []domain.Meme: matching memes, newest first.
//   - error: non-nil if the query fails.
func (r *MemeRepository) SearchByDescription(ctx context.Context, query string) ([]domain.Meme, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var memes []domain.Meme
	if err := r.db.WithContext(ctx).
		Where("LOWER(descripcion) LIKE ?", pattern).
		Order("created_at DESC").
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// GetByID retrieves a meme with its tags preloaded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
// Returns:
//   - *domain.Meme: meme record if found.
//   - error: non-nil if lookup fails.
func (r *MemeRepository) GetByID(ctx context.Context, id uint) (*domain.Meme, error) {
	var meme domain.Meme
	if err := r.db.WithContext(ctx).Preload("Etiquetas").First(&meme, id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

// CountMemes returns the total number of stored memes.
func (r *MemeRepository) CountMemes(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Meme{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountTags returns the total number of stored tags.
func (r *MemeRepository) CountTags(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Etiqueta{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
