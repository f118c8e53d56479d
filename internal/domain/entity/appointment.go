package entity

import (
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions maps a target status to the statuses it may be reached from
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {AppointmentStatusPending},
	AppointmentStatusCompleted: {AppointmentStatusPending, AppointmentStatusScheduled},
	AppointmentStatusCancelled: {AppointmentStatusPending, AppointmentStatusScheduled},
}

// TransitionSources returns the statuses from which to is reachable.
func TransitionSources(to AppointmentStatus) []AppointmentStatus {
	return allowedTransitions[to]
}

// Appointment represents a booked visit of a patient with a doctor
type Appointment struct {
	ID        int               `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID int               `gorm:"not null;index" json:"patientId"`
	DoctorID  int               `gorm:"not null;index:idx_appointments_doctor_date" json:"doctorId"`
	Date      time.Time         `gorm:"not null;index:idx_appointments_doctor_date" json:"date"`
	TypeID    int               `gorm:"column:type_id;not null" json:"type"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Patient *User            `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User            `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Type    *AppointmentType `gorm:"foreignKey:TypeID" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// CanTransitionTo reports whether the appointment may move to status to
func (a *Appointment) CanTransitionTo(to AppointmentStatus) bool {
	for _, from := range allowedTransitions[to] {
		if a.Status == from {
			return true
		}
	}
	return false
}

// InvolvesUser reports whether userID is the patient or the doctor of the appointment
func (a *Appointment) InvolvesUser(userID int) bool {
	return a.PatientID == userID || a.DoctorID == userID
}
