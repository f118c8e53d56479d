package handler

import (
	"errors"
	"net/http"
	"strconv"

	"dental-clinic-booking/internal/usecase"
	"dental-clinic-booking/pkg/response"

	"github.com/gorilla/mux"
)

type AppointmentTypeHandler struct {
	appointmentTypeUsecase usecase.AppointmentTypeUsecase
}

func NewAppointmentTypeHandler(appointmentTypeUsecase usecase.AppointmentTypeUsecase) *AppointmentTypeHandler {
	return &AppointmentTypeHandler{
		appointmentTypeUsecase: appointmentTypeUsecase,
	}
}

func (h *AppointmentTypeHandler) GetAllAppointmentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.appointmentTypeUsecase.GetAllAppointmentTypes(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointment types")
		return
	}

	response.Success(w, http.StatusOK, "Appointment types retrieved successfully", types)
}

func (h *AppointmentTypeHandler) GetAppointmentType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment type ID")
		return
	}

	appointmentType, err := h.appointmentTypeUsecase.GetAppointmentType(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrAppointmentTypeNotFound) {
			response.NotFound(w, "Appointment type not found")
			return
		}
		response.InternalServerError(w, "Failed to get appointment type")
		return
	}

	response.Success(w, http.StatusOK, "Appointment type retrieved successfully", appointmentType)
}
