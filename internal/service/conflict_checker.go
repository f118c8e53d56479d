package service

import (
	"errors"
	"time"

	"dental-clinic-booking/config"
	"dental-clinic-booking/internal/domain/entity"
)

var (
	ErrMissingFields          = errors.New("missing required fields")
	ErrInvalidDate            = errors.New("invalid date format")
	ErrOutsideBusinessHours   = errors.New("outside business hours")
	ErrWeekendNotBookable     = errors.New("weekend not bookable")
	ErrInvalidAppointmentType = errors.New("invalid appointment type")
	ErrSlotConflict           = errors.New("time slot conflicts with an existing appointment")
)

// dateLayouts are tried in order; layouts without an offset are read in the clinic time zone.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Candidate is an appointment a caller wants to book.
type Candidate struct {
	DoctorID int
	Date     string
	TypeID   int
}

// Verdict is the outcome of a conflict check. Err is nil when the slot is available.
type Verdict struct {
	Err       error
	Start     time.Time
	Type      *entity.AppointmentType
	Conflicts []entity.Appointment
}

func (v Verdict) Available() bool {
	return v.Err == nil
}

// ConflictChecker validates a candidate against clinic hours and a doctor's existing bookings.
// It holds only configuration and never touches storage, so it is safe for concurrent use.
type ConflictChecker struct {
	clinic config.ClinicConfig
}

func NewConflictChecker(clinic config.ClinicConfig) *ConflictChecker {
	if clinic.Location == nil {
		clinic.Location = time.UTC
	}
	return &ConflictChecker{clinic: clinic}
}

// Check runs the validations in order and then scans existing for overlapping
// intervals. Intervals are half-open, so back-to-back appointments do not conflict.
// Appointments of other doctors and cancelled ones are skipped.
func (c *ConflictChecker) Check(candidate Candidate, existing []entity.Appointment, types []entity.AppointmentType) Verdict {
	if candidate.DoctorID == 0 || candidate.Date == "" || candidate.TypeID == 0 {
		return Verdict{Err: ErrMissingFields}
	}

	start, err := c.ParseDate(candidate.Date)
	if err != nil {
		return Verdict{Err: ErrInvalidDate}
	}

	local := start.In(c.clinic.Location)
	minute := local.Hour()*60 + local.Minute()
	if minute < c.clinic.OpenMinute || minute >= c.clinic.CloseMinute {
		return Verdict{Err: ErrOutsideBusinessHours, Start: start}
	}

	if day := local.Weekday(); day == time.Saturday || day == time.Sunday {
		return Verdict{Err: ErrWeekendNotBookable, Start: start}
	}

	appointmentType := findType(types, candidate.TypeID)
	if appointmentType == nil {
		return Verdict{Err: ErrInvalidAppointmentType, Start: start}
	}

	end := start.Add(appointmentType.Duration())
	var conflicts []entity.Appointment
	for _, other := range existing {
		if other.DoctorID != candidate.DoctorID || other.IsCancelled() {
			continue
		}
		otherEnd := other.Date.Add(c.durationOf(types, other.TypeID))
		if start.Before(otherEnd) && end.After(other.Date) {
			conflicts = append(conflicts, other)
		}
	}

	verdict := Verdict{Start: start, Type: appointmentType, Conflicts: conflicts}
	if len(conflicts) > 0 {
		verdict.Err = ErrSlotConflict
	}
	return verdict
}

// ParseDate reads an ISO-8601 timestamp. Values without an offset are taken as clinic-local.
func (c *ConflictChecker) ParseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, value, c.clinic.Location)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (c *ConflictChecker) durationOf(types []entity.AppointmentType, typeID int) time.Duration {
	if t := findType(types, typeID); t != nil {
		return t.Duration()
	}
	return time.Duration(c.clinic.DefaultDurationMinutes) * time.Minute
}

func findType(types []entity.AppointmentType, id int) *entity.AppointmentType {
	for i := range types {
		if types[i].ID == id {
			return &types[i]
		}
	}
	return nil
}
