package repository

import (
	"context"

	"dental-clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentFilter struct {
	PatientID *int
	DoctorID  *int
	Status    *entity.AppointmentStatus
}

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter AppointmentFilter) ([]entity.Appointment, error)
	// FindActiveByDoctor returns the doctor's appointments that are not cancelled.
	FindActiveByDoctor(ctx context.Context, db *gorm.DB, doctorID int) ([]entity.Appointment, error)
	// UpdateStatus moves the appointment to status only if its current status is one of from.
	// It returns the number of affected rows.
	UpdateStatus(ctx context.Context, db *gorm.DB, id int, status entity.AppointmentStatus, from []entity.AppointmentStatus) (int64, error)
}
