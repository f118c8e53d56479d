package dto

import "time"

// Request DTOs

// CheckAvailabilityRequest carries no validate tags: missing fields are a
// checker verdict with its own error, not a generic validation failure.
type CheckAvailabilityRequest struct {
	DoctorID int    `json:"doctorId"`
	Date     string `json:"date"`
	TypeID   int    `json:"typeId"`
}

type CreateAppointmentRequest struct {
	DoctorID  int    `json:"doctorId"`
	Date      string `json:"date"`
	Type      int    `json:"type"`
	PatientID int    `json:"patientId,omitempty" validate:"omitempty,min=1"`
}

// Response DTOs

type ConflictResponse struct {
	ID   int       `json:"id"`
	Date time.Time `json:"date"`
	Type int       `json:"type"`
}

type AvailabilityResponse struct {
	Available bool               `json:"available"`
	Error     string             `json:"error,omitempty"`
	Conflicts []ConflictResponse `json:"conflicts,omitempty"`
}

type ParticipantResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AppointmentResponse struct {
	ID        int                  `json:"id"`
	PatientID int                  `json:"patientId"`
	DoctorID  int                  `json:"doctorId"`
	Date      time.Time            `json:"date"`
	Type      int                  `json:"type"`
	Status    string               `json:"status"`
	Patient   *ParticipantResponse `json:"patient,omitempty"`
	Doctor    *ParticipantResponse `json:"doctor,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
