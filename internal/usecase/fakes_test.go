package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"dental-clinic-booking/internal/delivery/http/middleware"
	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/internal/domain/repository"
	"dental-clinic-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func asUser(userID int, role entity.Role) context.Context {
	return middleware.WithUser(context.Background(), &jwt.Claims{
		UserID:  userID,
		Role:    string(role),
		TokenID: "access-id",
	})
}

type fakeUserRepository struct {
	users map[int]*entity.User
}

func newFakeUserRepository(users ...entity.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: map[int]*entity.User{}}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (f *fakeUserRepository) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	user.ID = len(f.users) + 1
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepository) FindByRole(ctx context.Context, db *gorm.DB, role entity.Role) ([]entity.User, error) {
	var out []entity.User
	for id := 1; id <= len(f.users); id++ {
		if u, ok := f.users[id]; ok && u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeAppointmentRepository struct {
	appointments  []entity.Appointment
	nextID        int
	beforeUpdate  func()
	findAllFilter repository.AppointmentFilter
	createErr     error
}

func (f *fakeAppointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	appointment.ID = 100 + f.nextID
	appointment.CreatedAt = time.Now()
	f.appointments = append(f.appointments, *appointment)
	return nil
}

func (f *fakeAppointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error) {
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			a := f.appointments[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter repository.AppointmentFilter) ([]entity.Appointment, error) {
	f.findAllFilter = filter
	var out []entity.Appointment
	for _, a := range f.appointments {
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointmentRepository) FindActiveByDoctor(ctx context.Context, db *gorm.DB, doctorID int) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range f.appointments {
		if a.DoctorID == doctorID && !a.IsCancelled() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id int, status entity.AppointmentStatus, from []entity.AppointmentStatus) (int64, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	for i := range f.appointments {
		if f.appointments[i].ID != id {
			continue
		}
		for _, s := range from {
			if f.appointments[i].Status == s {
				f.appointments[i].Status = status
				f.appointments[i].UpdatedAt = time.Now()
				return 1, nil
			}
		}
	}
	return 0, nil
}

type fakeAppointmentTypeRepository struct {
	types []entity.AppointmentType
}

func (f *fakeAppointmentTypeRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.AppointmentType, error) {
	return f.types, nil
}

func (f *fakeAppointmentTypeRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.AppointmentType, error) {
	for i := range f.types {
		if f.types[i].ID == id {
			return &f.types[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentTypeRepository) Create(ctx context.Context, db *gorm.DB, appointmentType *entity.AppointmentType) error {
	f.types = append(f.types, *appointmentType)
	return nil
}

type auditEntry struct {
	userID *int
	action string
}

type fakeAuditService struct {
	entries []auditEntry
}

func (f *fakeAuditService) LogCreate(ctx context.Context, userID *int, action string, entityName string, entityID string, newValue interface{}) error {
	f.entries = append(f.entries, auditEntry{userID: userID, action: action})
	return nil
}

func (f *fakeAuditService) LogUpdate(ctx context.Context, userID *int, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	f.entries = append(f.entries, auditEntry{userID: userID, action: action})
	return nil
}

func (f *fakeAuditService) LogEvent(ctx context.Context, userID *int, action string, metadata entity.JSON) error {
	f.entries = append(f.entries, auditEntry{userID: userID, action: action})
	return nil
}

func (f *fakeAuditService) actions() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.action
	}
	return out
}

type fakeTokenStore struct {
	mu   sync.Mutex
	live map[string]bool
	// revokeBarrier, when set, holds every Revoke call until all expected
	// callers have arrived.
	revokeBarrier *sync.WaitGroup
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{live: map[string]bool{}}
}

func (f *fakeTokenStore) key(userID int, tokenType jwt.TokenType, tokenID string) string {
	return string(tokenType) + ":" + tokenID
}

func (f *fakeTokenStore) Save(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[f.key(userID, tokenType, tokenID)] = true
	return nil
}

func (f *fakeTokenStore) Exists(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[f.key(userID, tokenType, tokenID)], nil
}

func (f *fakeTokenStore) Revoke(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error) {
	if f.revokeBarrier != nil {
		f.revokeBarrier.Done()
		f.revokeBarrier.Wait()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.key(userID, tokenType, tokenID)
	live := f.live[key]
	delete(f.live, key)
	return live, nil
}

func (f *fakeTokenStore) RevokeAll(ctx context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = map[string]bool{}
	return nil
}
