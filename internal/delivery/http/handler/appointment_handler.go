package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/service"
	"dental-clinic-booking/internal/usecase"
	"dental-clinic-booking/pkg/response"
	"dental-clinic-booking/pkg/validator"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// CheckAvailability answers with a bare availability document instead of the
// usual envelope: 200 when free, 400 for an invalid request, 409 on conflict.
func (h *AppointmentHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, dto.AvailabilityResponse{Error: "invalid request body"})
		return
	}

	result, err := h.appointmentUsecase.CheckAvailability(r.Context(), &req)
	if err != nil {
		var slotErr *usecase.SlotUnavailableError
		if !errors.As(err, &slotErr) {
			response.JSON(w, http.StatusInternalServerError, dto.AvailabilityResponse{Error: "failed to check availability"})
			return
		}

		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSlotConflict) {
			status = http.StatusConflict
		}
		response.JSON(w, status, dto.AvailabilityResponse{
			Error:     slotErr.Error(),
			Conflicts: slotErr.Conflicts,
		})
		return
	}

	response.JSON(w, http.StatusOK, result)
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.GetMyAppointments(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.CancelAppointment(r.Context(), id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *AppointmentHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.ConfirmAppointment(r.Context(), id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to confirm appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment confirmed successfully", appointment)
}

func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.CompleteAppointment(r.Context(), id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to complete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment completed successfully", appointment)
}

func appointmentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid appointment ID")
		return 0, false
	}
	return id, true
}

func writeAppointmentError(w http.ResponseWriter, err error, fallback string) {
	var slotErr *usecase.SlotUnavailableError
	if errors.As(err, &slotErr) {
		if errors.Is(err, service.ErrSlotConflict) {
			response.Conflict(w, slotErr.Error(), slotErr.Conflicts)
			return
		}
		response.BadRequest(w, slotErr.Error())
		return
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Invalid token")
	case errors.Is(err, usecase.ErrAppointmentNotFound),
		errors.Is(err, usecase.ErrDoctorNotFound),
		errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrAppointmentAlreadyCancelled),
		errors.Is(err, usecase.ErrAppointmentCompleted),
		errors.Is(err, usecase.ErrInvalidStatusTransition):
		response.Conflict(w, err.Error(), nil)
	case errors.Is(err, usecase.ErrPatientRequired),
		errors.Is(err, usecase.ErrInvalidStatusFilter):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
