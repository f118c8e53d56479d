package converter

import (
	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		PatientID: appointment.PatientID,
		DoctorID:  appointment.DoctorID,
		Date:      appointment.Date,
		Type:      appointment.TypeID,
		Status:    string(appointment.Status),
		Patient:   UserToParticipant(appointment.Patient),
		Doctor:    UserToParticipant(appointment.Doctor),
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, *AppointmentToResponse(&appointments[i]))
	}
	return responses
}

// AppointmentsToConflicts keeps only what a client needs to see about a clashing booking
func AppointmentsToConflicts(appointments []entity.Appointment) []dto.ConflictResponse {
	conflicts := make([]dto.ConflictResponse, len(appointments))
	for i, appointment := range appointments {
		conflicts[i] = dto.ConflictResponse{
			ID:   appointment.ID,
			Date: appointment.Date,
			Type: appointment.TypeID,
		}
	}
	return conflicts
}

// AppointmentTypesToResponses converts appointment types to DTOs
func AppointmentTypesToResponses(types []entity.AppointmentType) []dto.AppointmentTypeResponse {
	responses := make([]dto.AppointmentTypeResponse, len(types))
	for i, t := range types {
		responses[i] = *AppointmentTypeToResponse(&t)
	}
	return responses
}

func AppointmentTypeToResponse(t *entity.AppointmentType) *dto.AppointmentTypeResponse {
	if t == nil {
		return nil
	}
	return &dto.AppointmentTypeResponse{
		ID:              t.ID,
		Name:            t.Name,
		DurationMinutes: t.DurationMinutes,
	}
}
