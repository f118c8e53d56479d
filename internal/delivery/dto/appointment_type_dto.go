package dto

type AppointmentTypeResponse struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

type AppointmentTypeListResponse struct {
	AppointmentTypes []AppointmentTypeResponse `json:"appointmentTypes"`
	Total            int                       `json:"total"`
}
