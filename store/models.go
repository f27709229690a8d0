package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opd-ai/bookforge/bookcompiler"
)

type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `json:"avatar"`
	IsPro     bool      `json:"isPro"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

type Book struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	Title      string    `gorm:"not null" json:"title"`
	Author     string    `gorm:"not null" json:"author"`
	Subtitle   string    `json:"subtitle"`
	CoverImage string    `json:"coverImage"`
	Chapters   []Chapter `gorm:"constraint:OnDelete:CASCADE" json:"chapters"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Chapter rows keep the order of the book's chapter list in Position.
type Chapter struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"-"`
	BookID      string `gorm:"type:varchar(36);index;not null" json:"-"`
	Position    int    `gorm:"not null" json:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (c *Chapter) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Snapshot copies the book into the compiler's read-only form.
func (b *Book) Snapshot() bookcompiler.Book {
	out := bookcompiler.Book{
		ID:             b.ID,
		OwnerID:        b.UserID,
		Title:          b.Title,
		Author:         b.Author,
		Subtitle:       b.Subtitle,
		CoverImagePath: b.CoverImage,
		Chapters:       make([]bookcompiler.Chapter, 0, len(b.Chapters)),
	}
	for _, ch := range b.Chapters {
		out.Chapters = append(out.Chapters, bookcompiler.Chapter{Title: ch.Title, Content: ch.Content})
	}
	return out
}
