package repository

import (
	"context"
	"errors"

	"dental-clinic-booking/internal/domain/entity"
	domainRepo "dental-clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentTypeRepository struct{}

func NewAppointmentTypeRepository() domainRepo.AppointmentTypeRepository {
	return &appointmentTypeRepository{}
}

func (r *appointmentTypeRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.AppointmentType, error) {
	var types []entity.AppointmentType
	if err := db.WithContext(ctx).Order("id").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *appointmentTypeRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.AppointmentType, error) {
	var appointmentType entity.AppointmentType
	err := db.WithContext(ctx).Where("id = ?", id).First(&appointmentType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointmentType, nil
}

func (r *appointmentTypeRepository) Create(ctx context.Context, db *gorm.DB, appointmentType *entity.AppointmentType) error {
	return db.WithContext(ctx).Create(appointmentType).Error
}
