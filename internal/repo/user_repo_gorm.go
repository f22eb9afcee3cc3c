package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"estate-api/internal/domain"
	"estate-api/internal/feature/user"
	"estate-api/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	if m.ID == "" {
		m.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Invalid("username or email already registered")
		}
		return domain.Upstream("insert user", err)
	}
	*u = *m.ToDomain()
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) first(ctx context.Context, query string, arg string) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).First(&m, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Upstream("find user", err)
	}
	return m.ToDomain(), nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
