package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedData mirrors the db.json file the clinic front end was built against.
type SeedData struct {
	Users            []SeedUser            `json:"users"`
	AppointmentTypes []SeedAppointmentType `json:"appointmentTypes"`
	Appointments     []SeedAppointment     `json:"appointments"`
}

type SeedUser struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
}

type SeedAppointmentType struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

type SeedAppointment struct {
	ID        int       `json:"id"`
	PatientID int       `json:"patientId"`
	DoctorID  int       `json:"doctorId"`
	Date      time.Time `json:"date"`
	Type      int       `json:"type"`
	Status    string    `json:"status"`
}

type Seeder struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	typeRepo        repository.AppointmentTypeRepository
	appointmentRepo repository.AppointmentRepository
	passwordCost    int
}

func NewSeeder(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	typeRepo repository.AppointmentTypeRepository,
	appointmentRepo repository.AppointmentRepository,
) *Seeder {
	return &Seeder{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		typeRepo:        typeRepo,
		appointmentRepo: appointmentRepo,
		passwordCost:    bcrypt.DefaultCost,
	}
}

// LoadSeedFile reads and decodes a seed file.
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &data, nil
}

// Seed inserts data into an empty database. It does nothing once any user exists.
func (s *Seeder) Seed(ctx context.Context, data *SeedData) error {
	count, err := s.userRepo.Count(ctx, s.db)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.log.Info("Database already seeded, skipping")
		return nil
	}

	users, err := s.buildUsers(data.Users)
	if err != nil {
		return err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	for i := range users {
		if err := s.userRepo.Create(ctx, tx, &users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].Email, err)
		}
	}

	for _, t := range data.AppointmentTypes {
		appointmentType := entity.AppointmentType{ID: t.ID, Name: t.Name, DurationMinutes: t.DurationMinutes}
		if err := s.typeRepo.Create(ctx, tx, &appointmentType); err != nil {
			return fmt.Errorf("seed appointment type %s: %w", t.Name, err)
		}
	}

	for _, a := range data.Appointments {
		status := entity.AppointmentStatus(a.Status)
		if !status.IsValid() {
			return fmt.Errorf("seed appointment %d: invalid status %q", a.ID, a.Status)
		}
		appointment := entity.Appointment{
			ID:        a.ID,
			PatientID: a.PatientID,
			DoctorID:  a.DoctorID,
			Date:      a.Date.UTC(),
			TypeID:    a.Type,
			Status:    status,
		}
		if err := s.appointmentRepo.Create(ctx, tx, &appointment); err != nil {
			return fmt.Errorf("seed appointment %d: %w", a.ID, err)
		}
	}

	// Rows were inserted with explicit ids, so move each sequence past them.
	for _, table := range []string{"users", "appointment_types", "appointments"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)", table)
		if err := tx.Exec(query).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.log.Infof("Seeded %d users, %d appointment types, %d appointments",
		len(users), len(data.AppointmentTypes), len(data.Appointments))
	return nil
}

func (s *Seeder) buildUsers(seed []SeedUser) ([]entity.User, error) {
	users := make([]entity.User, 0, len(seed))
	for _, su := range seed {
		role := entity.Role(su.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("seed user %s: invalid role %q", su.Email, su.Role)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), s.passwordCost)
		if err != nil {
			return nil, fmt.Errorf("hash password of %s: %w", su.Email, err)
		}

		user := entity.User{
			ID:       su.ID,
			Email:    su.Email,
			Password: string(hash),
			Role:     role,
			Name:     su.Name,
			Phone:    optional(su.Phone),
			Address:  optional(su.Address),
		}
		if su.DateOfBirth != "" {
			dob, err := time.Parse(time.DateOnly, su.DateOfBirth)
			if err != nil {
				return nil, fmt.Errorf("seed user %s: invalid dateOfBirth: %w", su.Email, err)
			}
			user.DateOfBirth = &dob
		}
		users = append(users, user)
	}
	return users, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
