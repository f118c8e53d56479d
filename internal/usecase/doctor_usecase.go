package usecase

import (
	"context"

	"dental-clinic-booking/internal/converter"
	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorUsecase interface {
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
}

type doctorUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	userRepo repository.UserRepository
}

func NewDoctorUsecase(db *gorm.DB, log *logrus.Logger, userRepo repository.UserRepository) DoctorUsecase {
	return &doctorUsecase{
		db:       db,
		log:      log,
		userRepo: userRepo,
	}
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.userRepo.FindByRole(ctx, u.db, entity.RoleDoctor)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.UsersToDoctorResponses(doctors),
		Total:   len(doctors),
	}, nil
}
