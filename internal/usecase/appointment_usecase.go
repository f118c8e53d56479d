package usecase

import (
	"context"
	"errors"
	"strconv"

	"dental-clinic-booking/internal/converter"
	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/delivery/http/middleware"
	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/internal/domain/repository"
	"dental-clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated             = errors.New("user not found in context")
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentNotOwned         = errors.New("appointment does not belong to you")
	ErrAppointmentAlreadyCancelled = errors.New("this appointment has already been cancelled")
	ErrAppointmentCompleted        = errors.New("cannot cancel a completed appointment")
	ErrInvalidStatusTransition     = errors.New("appointment cannot move to the requested status")
	ErrInvalidStatusFilter         = errors.New("invalid status filter")
	ErrDoctorNotFound              = errors.New("doctor not found")
	ErrPatientNotFound             = errors.New("patient not found")
	ErrPatientRequired             = errors.New("patientId is required when a doctor books an appointment")
)

// SlotUnavailableError carries the checker's rejection and any conflicting bookings.
type SlotUnavailableError struct {
	Reason    error
	Conflicts []dto.ConflictResponse
}

func (e *SlotUnavailableError) Error() string {
	return e.Reason.Error()
}

func (e *SlotUnavailableError) Unwrap() error {
	return e.Reason
}

type AppointmentUsecase interface {
	CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, status string) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error)
	ConfirmAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	typeRepo        repository.AppointmentTypeRepository
	userRepo        repository.UserRepository
	checker         *service.ConflictChecker
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	typeRepo repository.AppointmentTypeRepository,
	userRepo repository.UserRepository,
	checker *service.ConflictChecker,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		typeRepo:        typeRepo,
		userRepo:        userRepo,
		checker:         checker,
		auditService:    auditService,
	}
}

// CheckAvailability is a read-only check. It reserves nothing, so a slot reported
// as available can still be taken before the caller books it.
func (u *appointmentUsecase) CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	_, err := u.evaluate(ctx, service.Candidate{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		TypeID:   req.TypeID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.AvailabilityResponse{Available: true}, nil
}

// CreateAppointment books a pending appointment.
//
// Flow:
// 1. Run the conflict checker against the doctor's active appointments
// 2. Resolve the patient (patients book for themselves, doctors name one)
// 3. Verify the doctor exists
// 4. Insert the appointment and write an audit entry
//
// Nothing locks the slot between steps 1 and 4; concurrent requests for the
// same slot can both be accepted.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, role, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	verdict, err := u.evaluate(ctx, service.Candidate{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		TypeID:   req.Type,
	})
	if err != nil {
		return nil, err
	}

	patientID, err := u.resolvePatient(ctx, userID, role, req.PatientID)
	if err != nil {
		return nil, err
	}

	doctor, err := u.userRepo.FindByID(ctx, u.db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.IsDoctor() {
		return nil, ErrDoctorNotFound
	}

	appointment := &entity.Appointment{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      verdict.Start.UTC(),
		TypeID:    req.Type,
		Status:    entity.AppointmentStatusPending,
	}

	if err := u.appointmentRepo.Create(ctx, u.db, appointment); err != nil {
		switch {
		case isForeignKeyError(err, "fk_appointments_doctor"):
			return nil, ErrDoctorNotFound
		case isForeignKeyError(err, "fk_appointments_patient"):
			return nil, ErrPatientNotFound
		case isForeignKeyError(err, "fk_appointments_type"):
			return nil, &SlotUnavailableError{Reason: service.ErrInvalidAppointmentType}
		case isUniqueError(err, "uq_appointments_doctor_date"):
			return nil, &SlotUnavailableError{Reason: service.ErrSlotConflict}
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	_ = u.auditService.LogCreate(ctx, &userID, entity.AuditActionAppointmentCreate, "appointment",
		strconv.Itoa(appointment.ID), converter.AppointmentToResponse(appointment))

	u.log.Infof("Appointment created: id=%d, doctor=%d, patient=%d, date=%s", appointment.ID, appointment.DoctorID, appointment.PatientID, appointment.Date)

	full, err := u.appointmentRepo.FindByID(ctx, u.db, appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %d: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// GetMyAppointments lists the caller's appointments: a patient's own bookings
// or the bookings assigned to a doctor.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, status string) (*dto.AppointmentListResponse, error) {
	userID, role, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var filter repository.AppointmentFilter
	if role == entity.RoleDoctor {
		filter.DoctorID = &userID
	} else {
		filter.PatientID = &userID
	}

	if status != "" {
		s := entity.AppointmentStatus(status)
		if !s.IsValid() {
			return nil, ErrInvalidStatusFilter
		}
		filter.Status = &s
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments for user %d: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	userID, _, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.findVisible(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel)
}

func (u *appointmentUsecase) ConfirmAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AppointmentStatusScheduled, entity.AuditActionAppointmentConfirm)
}

func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AppointmentStatusCompleted, entity.AuditActionAppointmentComplete)
}

// transition moves an appointment to status to. Cancelling is open to both
// participants; every other move belongs to the appointment's doctor.
func (u *appointmentUsecase) transition(ctx context.Context, id int, to entity.AppointmentStatus, action string) (*dto.AppointmentResponse, error) {
	userID, role, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.findVisible(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if to != entity.AppointmentStatusCancelled && (role != entity.RoleDoctor || appointment.DoctorID != userID) {
		return nil, ErrAppointmentNotOwned
	}

	if !appointment.CanTransitionTo(to) {
		return nil, transitionError(appointment.Status, to)
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, u.db, id, to, entity.TransitionSources(to))
	if err != nil {
		u.log.Warnf("Failed to update appointment %d to %s: %+v", id, to, err)
		return nil, err
	}
	if affected == 0 {
		// Someone else changed the status after we read it.
		current, err := u.appointmentRepo.FindByID(ctx, u.db, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrAppointmentNotFound
		}
		return nil, transitionError(current.Status, to)
	}

	previous := appointment.Status
	appointment.Status = to

	_ = u.auditService.LogUpdate(ctx, &userID, action, "appointment", strconv.Itoa(id), string(previous), string(to))

	u.log.Infof("Appointment %d moved from %s to %s by user %d", id, previous, to, userID)

	updated, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil || updated == nil {
		u.log.Warnf("Failed to reload appointment %d: %+v", id, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(updated), nil
}

// evaluate loads the reference data the checker needs and runs it.
func (u *appointmentUsecase) evaluate(ctx context.Context, candidate service.Candidate) (service.Verdict, error) {
	types, err := u.typeRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to load appointment types: %+v", err)
		return service.Verdict{}, err
	}

	var existing []entity.Appointment
	if candidate.DoctorID != 0 {
		existing, err = u.appointmentRepo.FindActiveByDoctor(ctx, u.db, candidate.DoctorID)
		if err != nil {
			u.log.Warnf("Failed to load appointments of doctor %d: %+v", candidate.DoctorID, err)
			return service.Verdict{}, err
		}
	}

	verdict := u.checker.Check(candidate, existing, types)
	if verdict.Err != nil {
		return verdict, &SlotUnavailableError{
			Reason:    verdict.Err,
			Conflicts: converter.AppointmentsToConflicts(verdict.Conflicts),
		}
	}
	return verdict, nil
}

func (u *appointmentUsecase) resolvePatient(ctx context.Context, userID int, role entity.Role, requested int) (int, error) {
	if role != entity.RoleDoctor {
		return userID, nil
	}
	if requested == 0 {
		return 0, ErrPatientRequired
	}

	patient, err := u.userRepo.FindByID(ctx, u.db, requested)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", requested, err)
		return 0, err
	}
	if patient == nil || !patient.IsPatient() {
		return 0, ErrPatientNotFound
	}
	return patient.ID, nil
}

func (u *appointmentUsecase) findVisible(ctx context.Context, id, userID int) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.InvolvesUser(userID) {
		return nil, ErrAppointmentNotOwned
	}
	return appointment, nil
}

func transitionError(current, to entity.AppointmentStatus) error {
	if to == entity.AppointmentStatusCancelled {
		switch current {
		case entity.AppointmentStatusCancelled:
			return ErrAppointmentAlreadyCancelled
		case entity.AppointmentStatusCompleted:
			return ErrAppointmentCompleted
		}
	}
	return ErrInvalidStatusTransition
}

func callerFromContext(ctx context.Context) (int, entity.Role, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return 0, "", ErrUnauthenticated
	}
	role, ok := middleware.GetRoleFromContext(ctx)
	if !ok {
		return 0, "", ErrUnauthenticated
	}
	return userID, role, nil
}
