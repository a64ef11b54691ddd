package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"github.com/organizador-eventos/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock AttendeeService ---

type mockAttendeeService struct {
	listFn          func(ctx context.Context) ([]models.Attendee, error)
	getFn           func(ctx context.Context, id string) (*models.Attendee, error)
	createFn        func(ctx context.Context, req *dto.AttendeeRequest) (*models.Attendee, error)
	updateFn        func(ctx context.Context, id string, req *dto.AttendeeRequest) (*models.Attendee, error)
	deleteFn        func(ctx context.Context, id string) error
	addAttendanceFn func(ctx context.Context, attendeeID string, req *dto.AttendanceRequest) (*models.Attendance, error)
}

func (m *mockAttendeeService) ListAttendees(ctx context.Context) ([]models.Attendee, error) {
	return m.listFn(ctx)
}
func (m *mockAttendeeService) GetAttendee(ctx context.Context, id string) (*models.Attendee, error) {
	return m.getFn(ctx, id)
}
func (m *mockAttendeeService) CreateAttendee(ctx context.Context, req *dto.AttendeeRequest) (*models.Attendee, error) {
	return m.createFn(ctx, req)
}
func (m *mockAttendeeService) UpdateAttendee(ctx context.Context, id string, req *dto.AttendeeRequest) (*models.Attendee, error) {
	return m.updateFn(ctx, id, req)
}
func (m *mockAttendeeService) DeleteAttendee(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockAttendeeService) AddAttendance(ctx context.Context, attendeeID string, req *dto.AttendanceRequest) (*models.Attendance, error) {
	return m.addAttendanceFn(ctx, attendeeID, req)
}

// memAttendeeRepo keeps attendees in a map so requests can run through the
// real service.
type memAttendeeRepo struct {
	repository.AttendeeRepository
	byID map[string]*models.Attendee
}

func (r *memAttendeeRepo) Create(_ context.Context, a *models.Attendee) error {
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	a.ID = "1"
	r.byID[a.ID] = a
	return nil
}

// --- Tests ---

func TestCreateAttendee_EndToEnd_Defaults(t *testing.T) {
	repo := &memAttendeeRepo{byID: map[string]*models.Attendee{}}
	e := newServer(nil, service.NewAttendeeService(repo, nil, nil))

	rec := do(e, http.MethodPost, "/api/v1/attendees", `{"nombre":"Ana","email":"ana@x.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Activo", resp["estado"])
	prefs := resp["preferencias"].(map[string]any)
	assert.Equal(t, []any{}, prefs["dietarias"])
	assert.Equal(t, []any{}, prefs["intereses"])
	assert.Equal(t, []any{}, resp["asistencias"])
	assert.Equal(t, map[string]any{}, resp["datosAdicionales"])

	rec = do(e, http.MethodPost, "/api/asistentes", `{"nombre":"Otra","email":"ANA@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAttendee_Handler_Validation(t *testing.T) {
	e := newServer(nil, &mockAttendeeService{})

	cases := map[string]struct{ body, field string }{
		"missing name":  {`{"email":"ana@x.com"}`, "nombre"},
		"missing email": {`{"nombre":"Ana"}`, "email"},
		"bad email":     {`{"nombre":"Ana","email":"ana"}`, "email"},
		"bad status":    {`{"nombre":"Ana","email":"ana@x.com","estado":"Borrado"}`, "estado"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/v1/attendees", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.field, decodeError(t, rec).Details)
		})
	}
}

func TestCreateAttendee_Handler_AttributesKeepOrder(t *testing.T) {
	svc := &mockAttendeeService{
		createFn: func(ctx context.Context, req *dto.AttendeeRequest) (*models.Attendee, error) {
			a := &models.Attendee{ID: "1", Name: req.Name, Email: req.Email, Attributes: req.Attributes}
			a.Normalize()
			return a, nil
		},
	}
	rec := do(newServer(nil, svc), http.MethodPost, "/api/v1/attendees",
		`{"nombre":"Ana","email":"ana@x.com","datosAdicionales":{"zeta":"1","alfa":2}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"datosAdicionales":{"zeta":"1","alfa":"2"}`)
}

func TestUpdateAttendee_Handler(t *testing.T) {
	svc := &mockAttendeeService{
		updateFn: func(ctx context.Context, id string, req *dto.AttendeeRequest) (*models.Attendee, error) {
			if id != "1" {
				return nil, service.ErrAttendeeNotFound
			}
			assert.True(t, req.Preferences.Interests.Merge)
			return &models.Attendee{ID: id}, nil
		},
	}
	e := newServer(nil, svc)
	body := `{"nombre":"Ana","email":"ana@x.com","preferencias":{"intereses":"music, tech, music"}}`

	assert.Equal(t, http.StatusOK, do(e, http.MethodPut, "/api/v1/attendees/1", body).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/api/asistentes/2", body).Code)
}

func TestDeleteAttendee_Handler(t *testing.T) {
	svc := &mockAttendeeService{
		deleteFn: func(ctx context.Context, id string) error {
			if id == "1" {
				return nil
			}
			return service.ErrAttendeeNotFound
		},
	}
	e := newServer(nil, svc)

	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/api/v1/attendees/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/api/v1/attendees/2", "").Code)
}

func TestAddAttendance_Handler(t *testing.T) {
	svc := &mockAttendeeService{
		addAttendanceFn: func(ctx context.Context, attendeeID string, req *dto.AttendanceRequest) (*models.Attendance, error) {
			if req.TicketTypeID == "99" {
				return nil, &service.ValidationError{Field: "ticketId", Reason: "does not belong to event"}
			}
			return &models.Attendance{ID: "100", EventID: req.EventID, TicketTypeID: req.TicketTypeID, Status: models.AttendanceConfirmed}, nil
		},
	}
	e := newServer(nil, svc)

	rec := do(e, http.MethodPost, "/api/asistentes/1/asistencias", `{"eventoId":"1","ticketId":"10"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"estado":"Confirmado"`)

	rec = do(e, http.MethodPost, "/api/v1/attendees/1/attendances", `{"eventoId":"1","ticketId":"99"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ticketId", decodeError(t, rec).Details)

	rec = do(e, http.MethodPost, "/api/v1/attendees/1/attendances", `{"eventoId":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ticketId", decodeError(t, rec).Details)
}
