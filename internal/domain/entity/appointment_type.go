package entity

import "time"

// AppointmentType is immutable reference data describing a booking category
type AppointmentType struct {
	ID              int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	DurationMinutes int    `gorm:"not null" json:"durationMinutes"`
}

func (AppointmentType) TableName() string {
	return "appointment_types"
}

func (t AppointmentType) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}
