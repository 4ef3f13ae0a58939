package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/service"
)

// memDraftStore is a minimal in-memory service.DraftStore for routing
// and envelope tests.
type memDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*models.Draft
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{drafts: map[string]*models.Draft{}}
}

func (m *memDraftStore) Upsert(_ context.Context, d *models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.drafts {
		if existing.ProductID == d.ProductID && existing.EmployeeID == d.EmployeeID {
			existing.Data = d.Data
			existing.SaveType = d.SaveType
			existing.LastSaved = time.Now()
			*d = *existing
			return nil
		}
	}
	d.LastSaved = time.Now()
	copied := *d
	m.drafts[d.ID] = &copied
	return nil
}

func (m *memDraftStore) GetByID(_ context.Context, id string) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.drafts[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memDraftStore) GetByKey(_ context.Context, productID, employeeID string) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drafts {
		if d.ProductID == productID && d.EmployeeID == employeeID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDraftStore) UpdateByID(_ context.Context, id string, data models.DraftData, saveType models.SaveType) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d.Data = data
	d.SaveType = saveType
	copied := *d
	return &copied, nil
}

func (m *memDraftStore) Delete(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return 0, nil
	}
	delete(m.drafts, id)
	return 1, nil
}

func (m *memDraftStore) ListByEmployee(_ context.Context, employeeID string, saveType models.SaveType) ([]models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Draft
	for _, d := range m.drafts {
		if d.EmployeeID == employeeID && (saveType == "" || d.SaveType == saveType) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDraftStore) ListPending(context.Context) ([]models.Draft, error) {
	return nil, nil
}

func (m *memDraftStore) DeleteStaleAuto(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
		Step string `json:"step,omitempty"`
	} `json:"error"`
}

func newDraftTestRouter(store *memDraftStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDraftHandler(service.NewDraftService(store), nil)

	r := gin.New()
	r.POST("/v1/drafts", h.Save)
	r.GET("/v1/drafts/fetch", h.Fetch)
	r.DELETE("/v1/drafts/:draftId", h.Delete)
	return r
}

func TestSaveDraftEndpoint(t *testing.T) {
	router := newDraftTestRouter(newMemDraftStore())

	body := `{"productId":"P-1","employeeId":"emp-1","saveType":"manual","draftData":{"ProductName":"Cola"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if !resp.Success {
		t.Errorf("success = false: %s", w.Body.String())
	}
	var d models.Draft
	if err := json.Unmarshal(resp.Data, &d); err != nil {
		t.Fatalf("bad draft payload: %v", err)
	}
	if d.SaveType != models.SaveTypeManual || d.Data.ProductName != "Cola" {
		t.Errorf("saved draft = %+v", d)
	}
}

func TestSaveDraftRejectsMissingKey(t *testing.T) {
	router := newDraftTestRouter(newMemDraftStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/drafts", strings.NewReader(`{"employeeId":"emp-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFetchDraftNotFoundEnvelope(t *testing.T) {
	router := newDraftTestRouter(newMemDraftStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/drafts/fetch?productId=P-9&employeeId=emp-9", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if resp.Success {
		t.Error("success = true on a miss")
	}
	if resp.Error == nil || resp.Error.Code != "DRAFT_NOT_FOUND" {
		t.Errorf("error = %+v, want DRAFT_NOT_FOUND", resp.Error)
	}
}

func TestDeleteDraftEndpoint(t *testing.T) {
	store := newMemDraftStore()
	store.drafts["d-1"] = &models.Draft{ID: "d-1", ProductID: "P-1", EmployeeID: "emp-1"}
	router := newDraftTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/drafts/d-1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/v1/drafts/d-1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}
