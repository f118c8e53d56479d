package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/service"
	"dental-clinic-booking/internal/usecase"
	"dental-clinic-booking/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAppointmentUsecase struct {
	checkErr      error
	createErr     error
	transitionErr error
	lastStatus    string
	lastID        int
}

func (f *fakeAppointmentUsecase) CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return &dto.AvailabilityResponse{Available: true}, nil
}

func (f *fakeAppointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dto.AppointmentResponse{ID: 11, DoctorID: req.DoctorID, Type: req.Type, Status: "pending"}, nil
}

func (f *fakeAppointmentUsecase) GetMyAppointments(ctx context.Context, status string) (*dto.AppointmentListResponse, error) {
	f.lastStatus = status
	if status == "archived" {
		return nil, usecase.ErrInvalidStatusFilter
	}
	return &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}}, nil
}

func (f *fakeAppointmentUsecase) GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	f.lastID = id
	return &dto.AppointmentResponse{ID: id}, f.transitionErr
}

func (f *fakeAppointmentUsecase) CancelAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	return f.transition(id, "cancelled")
}

func (f *fakeAppointmentUsecase) ConfirmAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	return f.transition(id, "scheduled")
}

func (f *fakeAppointmentUsecase) CompleteAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	return f.transition(id, "completed")
}

func (f *fakeAppointmentUsecase) transition(id int, status string) (*dto.AppointmentResponse, error) {
	f.lastID = id
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	return &dto.AppointmentResponse{ID: id, Status: status}, nil
}

type fakeAuthUsecase struct {
	loginErr error
}

func (f *fakeAuthUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return nil
}

func (f *fakeAuthUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return nil, usecase.ErrTokenRevoked
}

func (f *fakeAuthUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	return nil, usecase.ErrUnauthenticated
}

type fakeAppointmentTypeUsecase struct{}

func (fakeAppointmentTypeUsecase) GetAllAppointmentTypes(ctx context.Context) (*dto.AppointmentTypeListResponse, error) {
	return &dto.AppointmentTypeListResponse{
		AppointmentTypes: []dto.AppointmentTypeResponse{{ID: 1, Name: "Cleaning", DurationMinutes: 30}},
		Total:            1,
	}, nil
}

func (fakeAppointmentTypeUsecase) GetAppointmentType(ctx context.Context, id int) (*dto.AppointmentTypeResponse, error) {
	if id != 1 {
		return nil, usecase.ErrAppointmentTypeNotFound
	}
	return &dto.AppointmentTypeResponse{ID: 1, Name: "Cleaning", DurationMinutes: 30}, nil
}

func serve(h http.HandlerFunc, method, target, body string, vars map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestCheckAvailabilityResponses(t *testing.T) {
	conflictAt := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
		conflicts  int
	}{
		{name: "free", body: `{"doctorId":1,"date":"2024-01-08T10:00:00Z","typeId":1}`, wantStatus: http.StatusOK},
		{
			name: "conflict",
			body: `{"doctorId":1,"date":"2024-01-08T09:15:00Z","typeId":1}`,
			err: &usecase.SlotUnavailableError{
				Reason:    service.ErrSlotConflict,
				Conflicts: []dto.ConflictResponse{{ID: 7, Date: conflictAt, Type: 1}},
			},
			wantStatus: http.StatusConflict,
			wantError:  service.ErrSlotConflict.Error(),
			conflicts:  1,
		},
		{
			name:       "weekend",
			body:       `{"doctorId":1,"date":"2024-01-06T10:00:00Z","typeId":1}`,
			err:        &usecase.SlotUnavailableError{Reason: service.ErrWeekendNotBookable},
			wantStatus: http.StatusBadRequest,
			wantError:  "weekend not bookable",
		},
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest, wantError: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&fakeAppointmentUsecase{checkErr: tt.err}, validator.NewValidator())

			rec, body := serve(h.CheckAvailability, http.MethodPost, "/api/v1/appointments/check-availability", tt.body, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, body["available"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
			if tt.conflicts > 0 {
				conflicts, ok := body["conflicts"].([]any)
				require.True(t, ok)
				assert.Len(t, conflicts, tt.conflicts)
			} else {
				assert.NotContains(t, body, "conflicts")
			}
		})
	}
}

func TestCreateAppointmentResponses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "created", body: `{"doctorId":1,"date":"2024-01-08T10:00:00Z","type":1}`, wantStatus: http.StatusCreated},
		{name: "negative patient", body: `{"doctorId":1,"date":"2024-01-08T10:00:00Z","type":1,"patientId":-1}`, wantStatus: http.StatusBadRequest},
		{name: "conflict", body: `{"doctorId":1,"date":"2024-01-08T09:15:00Z","type":1}`, err: &usecase.SlotUnavailableError{Reason: service.ErrSlotConflict}, wantStatus: http.StatusConflict},
		{name: "outside hours", body: `{"doctorId":1,"date":"2024-01-08T16:00:00Z","type":1}`, err: &usecase.SlotUnavailableError{Reason: service.ErrOutsideBusinessHours}, wantStatus: http.StatusBadRequest},
		{name: "unknown doctor", body: `{"doctorId":9,"date":"2024-01-08T10:00:00Z","type":1}`, err: usecase.ErrDoctorNotFound, wantStatus: http.StatusNotFound},
		{name: "doctor without patient", body: `{"doctorId":1,"date":"2024-01-08T10:00:00Z","type":1}`, err: usecase.ErrPatientRequired, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&fakeAppointmentUsecase{createErr: tt.err}, validator.NewValidator())

			rec, body := serve(h.CreateAppointment, http.MethodPost, "/api/v1/appointments", tt.body, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusCreated, body["success"])
		})
	}
}

func TestTransitionResponses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "already cancelled", err: usecase.ErrAppointmentAlreadyCancelled, wantStatus: http.StatusConflict},
		{name: "completed", err: usecase.ErrAppointmentCompleted, wantStatus: http.StatusConflict},
		{name: "not owned", err: usecase.ErrAppointmentNotOwned, wantStatus: http.StatusForbidden},
		{name: "missing", err: usecase.ErrAppointmentNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeAppointmentUsecase{transitionErr: tt.err}
			h := NewAppointmentHandler(uc, validator.NewValidator())

			rec, body := serve(h.CancelAppointment, http.MethodPatch, "/api/v1/appointments/5/cancel", "", map[string]string{"id": "5"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 5, uc.lastID)
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), body["message"])
			}
		})
	}
}

func TestAppointmentIDMustBePositive(t *testing.T) {
	uc := &fakeAppointmentUsecase{}
	h := NewAppointmentHandler(uc, validator.NewValidator())

	rec, _ := serve(h.GetAppointment, http.MethodGet, "/api/v1/appointments/0", "", map[string]string{"id": "0"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, uc.lastID)
}

func TestGetMyAppointmentsPassesStatus(t *testing.T) {
	uc := &fakeAppointmentUsecase{}
	h := NewAppointmentHandler(uc, validator.NewValidator())

	rec, _ := serve(h.GetMyAppointments, http.MethodGet, "/api/v1/appointments?status=pending", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", uc.lastStatus)

	rec, _ = serve(h.GetMyAppointments, http.MethodGet, "/api/v1/appointments?status=archived", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginResponses(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, validator.NewValidator())
	rec, body := serve(h.Login, http.MethodPost, "/api/v1/auth/login", `{"email":"bob.doe@email.com","password":"patient123"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "access", data["accessToken"])

	rec, body = serve(h.Login, http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	h = NewAuthHandler(&fakeAuthUsecase{loginErr: usecase.ErrInvalidCredentials}, validator.NewValidator())
	rec, body = serve(h.Login, http.MethodPost, "/api/v1/auth/login", `{"email":"bob.doe@email.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestRefreshTokenRevoked(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, validator.NewValidator())

	rec, _ := serve(h.RefreshToken, http.MethodPost, "/api/v1/auth/refresh-token", `{"refreshToken":"old"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(h.RefreshToken, http.MethodPost, "/api/v1/auth/refresh-token", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutWithoutBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, validator.NewValidator())

	rec, _ := serve(h.Logout, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAppointmentTypeHandler(t *testing.T) {
	h := NewAppointmentTypeHandler(fakeAppointmentTypeUsecase{})

	rec, body := serve(h.GetAllAppointmentTypes, http.MethodGet, "/api/v1/appointment-types", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = serve(h.GetAppointmentType, http.MethodGet, "/api/v1/appointment-types/1", "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(h.GetAppointmentType, http.MethodGet, "/api/v1/appointment-types/9", "", map[string]string{"id": "9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
