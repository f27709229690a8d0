package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/opd-ai/bookforge/logger"
)

type UserRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) *UserRepo {
	return &UserRepo{db: db, log: logger.OrNop(log).With("repo", "UserRepo")}
}

// Create inserts u with its email lowercased. u.Password must already be
// hashed.
func (r *UserRepo) Create(ctx context.Context, tx *gorm.DB, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	exists, err := r.EmailExists(ctx, tx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEmail
	}
	if err := txOr(tx, r.db).WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *UserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := txOr(tx, r.db).WithContext(ctx).
		Model(&User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*User, error) {
	var u User
	if err := txOr(tx, r.db).WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error) {
	var u User
	if err := txOr(tx, r.db).WithContext(ctx).
		First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateName changes the display name. An empty name leaves it as is.
func (r *UserRepo) UpdateName(ctx context.Context, tx *gorm.DB, id, name string) (*User, error) {
	u, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return u, nil
	}
	if err := txOr(tx, r.db).WithContext(ctx).Model(u).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	u.Name = name
	return u, nil
}
