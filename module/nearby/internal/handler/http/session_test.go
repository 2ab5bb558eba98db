package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

type mockSessionService struct {
	openFn        func(ctx context.Context, req domain.OpenSessionRequest) (domain.View, error)
	viewFn        func(ctx context.Context, customerID, sessionID string) (domain.View, error)
	setRadiusFn   func(ctx context.Context, customerID, sessionID string, band domain.RadiusBand) error
	setViewModeFn func(ctx context.Context, customerID, sessionID string, mode domain.ViewMode) error
	closeFn       func(customerID, sessionID string) error
}

func (m *mockSessionService) Open(ctx context.Context, req domain.OpenSessionRequest) (domain.View, error) {
	return m.openFn(ctx, req)
}

func (m *mockSessionService) View(ctx context.Context, customerID, sessionID string) (domain.View, error) {
	return m.viewFn(ctx, customerID, sessionID)
}

func (m *mockSessionService) SetRadius(ctx context.Context, customerID, sessionID string, band domain.RadiusBand) error {
	return m.setRadiusFn(ctx, customerID, sessionID, band)
}

func (m *mockSessionService) SetViewMode(ctx context.Context, customerID, sessionID string, mode domain.ViewMode) error {
	return m.setViewModeFn(ctx, customerID, sessionID, mode)
}

func (m *mockSessionService) Close(customerID, sessionID string) error {
	return m.closeFn(customerID, sessionID)
}

func setupSessionRouter(svc sessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSessionHandler(svc, RequireCustomer(testSecret))
	h.Register(r.Group(""))
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "C-001"))
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resp["error"]
}

func TestOpenSession_Success(t *testing.T) {
	svc := &mockSessionService{
		openFn: func(_ context.Context, req domain.OpenSessionRequest) (domain.View, error) {
			if req.CustomerID != "C-001" {
				t.Fatalf("unexpected customer: %s", req.CustomerID)
			}
			if req.Center != (domain.Coordinate{Lat: -6.2088, Lon: 106.8456}) {
				t.Fatalf("unexpected center: %v", req.Center)
			}
			if req.Radius != domain.Radius5Km || req.Mode != domain.ViewList {
				t.Fatalf("unexpected radius/mode: %s %s", req.Radius, req.Mode)
			}
			return domain.View{SessionID: "S-1", CustomerID: req.CustomerID, Radius: req.Radius, Mode: req.Mode, State: domain.StateLoading}, nil
		},
	}

	r := setupSessionRouter(svc)
	w := doRequest(t, r, "POST", "/sessions",
		`{"area":{"latitude":-6.2088,"longitude":106.8456},"radius":"5 km","view_mode":"list"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp domain.View
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SessionID != "S-1" {
		t.Errorf("expected S-1, got %s", resp.SessionID)
	}
	if resp.Radius != domain.Radius5Km {
		t.Errorf("expected 5 km, got %s", resp.Radius)
	}
	if !strings.Contains(w.Body.String(), `"radius":"5 km"`) {
		t.Errorf("expected radius label in body, got %s", w.Body.String())
	}
}

func TestOpenSession_DefaultsLeftToService(t *testing.T) {
	svc := &mockSessionService{
		openFn: func(_ context.Context, req domain.OpenSessionRequest) (domain.View, error) {
			if req.Radius != 0 || req.Mode != "" {
				t.Fatalf("expected unset radius/mode, got %s %s", req.Radius, req.Mode)
			}
			return domain.View{SessionID: "S-1", Radius: domain.Radius3Km}, nil
		},
	}

	r := setupSessionRouter(svc)
	w := doRequest(t, r, "POST", "/sessions", `{"area":{"latitude":0,"longitude":0}}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOpenSession_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed", `{"area":`, "invalid request body"},
		{"missing area", `{"radius":"3 km"}`, "invalid request body"},
		{"out of range", `{"area":{"latitude":95,"longitude":0}}`, "invalid area coordinate"},
		{"bad radius", `{"area":{"latitude":0,"longitude":0},"radius":"2 km"}`, ""},
		{"bad mode", `{"area":{"latitude":0,"longitude":0},"view_mode":"grid"}`, ""},
	}

	svc := &mockSessionService{
		openFn: func(_ context.Context, _ domain.OpenSessionRequest) (domain.View, error) {
			t.Fatal("service should not be called")
			return domain.View{}, nil
		},
	}
	r := setupSessionRouter(svc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, "POST", "/sessions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if tt.wantErr != "" && errorBody(t, w) != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, errorBody(t, w))
			}
		})
	}
}

func TestOpenSession_ServiceErrors(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
	}{
		{fmt.Errorf("%w: timeout", domain.ErrDirectoryFetchFailed), http.StatusServiceUnavailable},
		{domain.ErrInvalidCoordinate, http.StatusBadRequest},
		{errors.New("broker down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		svc := &mockSessionService{
			openFn: func(_ context.Context, _ domain.OpenSessionRequest) (domain.View, error) {
				return domain.View{}, tt.err
			},
		}
		r := setupSessionRouter(svc)
		w := doRequest(t, r, "POST", "/sessions", `{"area":{"latitude":0,"longitude":0}}`)
		if w.Code != tt.wantCode {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.wantCode, w.Code)
		}
	}
}

func TestOpenSession_Unauthorized(t *testing.T) {
	r := setupSessionRouter(&mockSessionService{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sessions", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetSession(t *testing.T) {
	svc := &mockSessionService{
		viewFn: func(_ context.Context, customerID, sessionID string) (domain.View, error) {
			if customerID != "C-001" {
				t.Fatalf("unexpected customer: %s", customerID)
			}
			if sessionID != "S-1" {
				return domain.View{}, domain.ErrSessionNotFound
			}
			return domain.View{SessionID: "S-1", Radius: domain.Radius3Km, State: domain.StateReady, Groups: []domain.RadiusGroup{}}, nil
		},
	}
	r := setupSessionRouter(svc)

	w := doRequest(t, r, "GET", "/sessions/S-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp domain.View
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.State != domain.StateReady {
		t.Errorf("expected ready, got %s", resp.State)
	}

	w = doRequest(t, r, "GET", "/sessions/S-9", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if errorBody(t, w) != "session not found" {
		t.Errorf("expected session not found, got %q", errorBody(t, w))
	}
}

func TestSetRadius(t *testing.T) {
	var got domain.RadiusBand
	svc := &mockSessionService{
		setRadiusFn: func(_ context.Context, _, _ string, band domain.RadiusBand) error {
			got = band
			return nil
		},
		viewFn: func(_ context.Context, _, sessionID string) (domain.View, error) {
			return domain.View{SessionID: sessionID, Radius: got}, nil
		},
	}
	r := setupSessionRouter(svc)

	w := doRequest(t, r, "PUT", "/sessions/S-1/radius", `{"radius":"7km"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got != domain.Radius7Km {
		t.Errorf("expected 7 km, got %s", got)
	}

	w = doRequest(t, r, "PUT", "/sessions/S-1/radius", `{"radius":"10 km"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = doRequest(t, r, "PUT", "/sessions/S-1/radius", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSetRadius_StoppedSession(t *testing.T) {
	svc := &mockSessionService{
		setRadiusFn: func(_ context.Context, _, _ string, _ domain.RadiusBand) error {
			return domain.ErrSynchronizerStopped
		},
	}
	r := setupSessionRouter(svc)

	w := doRequest(t, r, "PUT", "/sessions/S-1/radius", `{"radius":"1 km"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSetViewMode(t *testing.T) {
	var got domain.ViewMode
	svc := &mockSessionService{
		setViewModeFn: func(_ context.Context, _, _ string, mode domain.ViewMode) error {
			got = mode
			return nil
		},
		viewFn: func(_ context.Context, _, sessionID string) (domain.View, error) {
			return domain.View{SessionID: sessionID, Radius: domain.Radius3Km, Mode: got}, nil
		},
	}
	r := setupSessionRouter(svc)

	w := doRequest(t, r, "PUT", "/sessions/S-1/view", `{"view_mode":"map"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != domain.ViewMap {
		t.Errorf("expected map, got %s", got)
	}

	w = doRequest(t, r, "PUT", "/sessions/S-1/view", `{"view_mode":"satellite"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCloseSession(t *testing.T) {
	svc := &mockSessionService{
		closeFn: func(customerID, sessionID string) error {
			if sessionID != "S-1" {
				return domain.ErrSessionNotFound
			}
			return nil
		},
	}
	r := setupSessionRouter(svc)

	w := doRequest(t, r, "DELETE", "/sessions/S-1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doRequest(t, r, "DELETE", "/sessions/S-2", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
