package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/opd-ai/bookforge/logger"
)

type BookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, log *logger.Logger) *BookRepo {
	return &BookRepo{db: db, log: logger.OrNop(log).With("repo", "BookRepo")}
}

// BookPatch lists the fields an update replaces. Nil fields are kept.
type BookPatch struct {
	Title    *string
	Author   *string
	Subtitle *string
	Chapters *[]Chapter
}

func orderedChapters(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func numberChapters(chapters []Chapter) {
	for i := range chapters {
		chapters[i].ID = ""
		chapters[i].Position = i
	}
}

func (r *BookRepo) Create(ctx context.Context, tx *gorm.DB, b *Book) error {
	numberChapters(b.Chapters)
	if err := txOr(tx, r.db).WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("creating book: %w", err)
	}
	return nil
}

func (r *BookRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*Book, error) {
	var b Book
	if err := txOr(tx, r.db).WithContext(ctx).
		Preload("Chapters", orderedChapters).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// ListByUser returns userID's books, newest first.
func (r *BookRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]Book, error) {
	var books []Book
	if err := txOr(tx, r.db).WithContext(ctx).
		Preload("Chapters", orderedChapters).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return books, nil
}

// Update applies p to the book and returns the stored result. Supplied
// chapters replace the existing list.
func (r *BookRepo) Update(ctx context.Context, id string, p BookPatch) (*Book, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.GetByID(ctx, tx, id); err != nil {
			return err
		}
		fields := map[string]any{}
		if p.Title != nil {
			fields["title"] = *p.Title
		}
		if p.Author != nil {
			fields["author"] = *p.Author
		}
		if p.Subtitle != nil {
			fields["subtitle"] = *p.Subtitle
		}
		if len(fields) > 0 {
			if err := tx.Model(&Book{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return fmt.Errorf("updating book: %w", err)
			}
		}
		if p.Chapters != nil {
			if err := tx.Where("book_id = ?", id).Delete(&Chapter{}).Error; err != nil {
				return fmt.Errorf("clearing chapters: %w", err)
			}
			chapters := *p.Chapters
			numberChapters(chapters)
			for i := range chapters {
				chapters[i].BookID = id
			}
			if len(chapters) > 0 {
				if err := tx.Create(&chapters).Error; err != nil {
					return fmt.Errorf("saving chapters: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, nil, id)
}

func (r *BookRepo) SetCover(ctx context.Context, tx *gorm.DB, id, path string) (*Book, error) {
	res := txOr(tx, r.db).WithContext(ctx).Model(&Book{}).Where("id = ?", id).Update("cover_image", path)
	if res.Error != nil {
		return nil, fmt.Errorf("updating cover: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, tx, id)
}

func (r *BookRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&Chapter{}).Error; err != nil {
			return fmt.Errorf("deleting chapters: %w", err)
		}
		res := tx.Delete(&Book{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("deleting book: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
