package repository

import (
	"context"
	"errors"

	"dental-clinic-booking/internal/domain/entity"
	domainRepo "dental-clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit("Patient", "Doctor", "Type").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter domainRepo.AppointmentFilter) ([]entity.Appointment, error) {
	query := db.WithContext(ctx).Preload("Patient").Preload("Doctor")

	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var appointments []entity.Appointment
	if err := query.Order("date ASC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveByDoctor(ctx context.Context, db *gorm.DB, doctorID int) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND status != ?", doctorID, entity.AppointmentStatusCancelled).
		Order("date ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateStatus changes status only when the current status is one of from,
// so two concurrent transitions on the same row cannot both win.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id int, status entity.AppointmentStatus, from []entity.AppointmentStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", status)
	return result.RowsAffected, result.Error
}
