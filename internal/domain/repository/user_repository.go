package repository

import (
	"context"

	"dental-clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error)
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.User, error)
	FindByRole(ctx context.Context, db *gorm.DB, role entity.Role) ([]entity.User, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
