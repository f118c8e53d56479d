package repository

import (
	"context"

	"dental-clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentTypeRepository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.AppointmentType, error)
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.AppointmentType, error)
	Create(ctx context.Context, db *gorm.DB, appointmentType *entity.AppointmentType) error
}
