package usecase

import (
	"context"
	"errors"

	"dental-clinic-booking/internal/converter"
	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrAppointmentTypeNotFound = errors.New("appointment type not found")

type AppointmentTypeUsecase interface {
	GetAllAppointmentTypes(ctx context.Context) (*dto.AppointmentTypeListResponse, error)
	GetAppointmentType(ctx context.Context, id int) (*dto.AppointmentTypeResponse, error)
}

type appointmentTypeUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	typeRepo repository.AppointmentTypeRepository
}

func NewAppointmentTypeUsecase(db *gorm.DB, log *logrus.Logger, typeRepo repository.AppointmentTypeRepository) AppointmentTypeUsecase {
	return &appointmentTypeUsecase{
		db:       db,
		log:      log,
		typeRepo: typeRepo,
	}
}

func (u *appointmentTypeUsecase) GetAllAppointmentTypes(ctx context.Context) (*dto.AppointmentTypeListResponse, error) {
	types, err := u.typeRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find appointment types: %+v", err)
		return nil, err
	}

	return &dto.AppointmentTypeListResponse{
		AppointmentTypes: converter.AppointmentTypesToResponses(types),
		Total:            len(types),
	}, nil
}

func (u *appointmentTypeUsecase) GetAppointmentType(ctx context.Context, id int) (*dto.AppointmentTypeResponse, error) {
	appointmentType, err := u.typeRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment type %d: %+v", id, err)
		return nil, err
	}
	if appointmentType == nil {
		return nil, ErrAppointmentTypeNotFound
	}

	return converter.AppointmentTypeToResponse(appointmentType), nil
}
