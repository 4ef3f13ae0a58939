package service

import (
	"context"
	"testing"
	"time"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/utils"
)

func TestDraftUpsertKeepsOneRowPerPair(t *testing.T) {
	store := newFakeDraftStore()
	svc := NewDraftService(store)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "P-1", "emp-1", models.DraftData{ProductName: "v1"}, models.SaveTypeAuto)
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	second, err := svc.Upsert(ctx, "P-1", "emp-1", models.DraftData{ProductName: "v2"}, models.SaveTypeManual)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	if store.count() != 1 {
		t.Fatalf("draft count = %d, want 1", store.count())
	}
	if second.ID != first.ID {
		t.Errorf("upsert minted a new id: %q -> %q", first.ID, second.ID)
	}
	if second.Data.ProductName != "v2" {
		t.Errorf("payload = %q, want the last write v2", second.Data.ProductName)
	}
	if second.SaveType != models.SaveTypeManual {
		t.Errorf("saveType = %q, want manual", second.SaveType)
	}
}

func TestDraftUpsertDefaultsToAuto(t *testing.T) {
	svc := NewDraftService(newFakeDraftStore())

	d, err := svc.Upsert(context.Background(), "P-1", "emp-1", models.DraftData{}, "")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if d.SaveType != models.SaveTypeAuto {
		t.Errorf("saveType = %q, want auto", d.SaveType)
	}
}

func TestDraftUpsertValidation(t *testing.T) {
	svc := NewDraftService(newFakeDraftStore())
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, "", "emp-1", models.DraftData{}, models.SaveTypeAuto); err == nil {
		t.Error("missing productId accepted")
	}
	if _, err := svc.Upsert(ctx, "P-1", "", models.DraftData{}, models.SaveTypeAuto); err == nil {
		t.Error("missing employeeId accepted")
	}
	_, err := svc.Upsert(ctx, "P-1", "emp-1", models.DraftData{}, "draft")
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Kind != utils.KindInvalidArgument || appErr.Code != "INVALID_SAVE_TYPE" {
		t.Errorf("unknown saveType error = %v, want INVALID_SAVE_TYPE", err)
	}
}

func TestDraftFetchRoundTrip(t *testing.T) {
	svc := NewDraftService(newFakeDraftStore())
	ctx := context.Background()

	saved, err := svc.Upsert(ctx, "P-1", "emp-1", models.DraftData{ProductName: "Cola"}, models.SaveTypeManual)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := svc.Fetch(ctx, "P-1", "emp-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.ID != saved.ID || got.Data.ProductName != "Cola" {
		t.Errorf("fetched %+v, want the saved draft", got)
	}

	_, err = svc.Fetch(ctx, "P-1", "emp-2")
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Kind != utils.KindNotFound {
		t.Errorf("fetch miss error = %v, want NotFound", err)
	}
}

func TestDraftDeleteMissingIsNotFound(t *testing.T) {
	svc := NewDraftService(newFakeDraftStore())

	err := svc.Delete(context.Background(), "nope")
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Kind != utils.KindNotFound {
		t.Fatalf("error = %v, want NotFound", err)
	}
}

func TestDraftListByEmployeeFiltersSaveType(t *testing.T) {
	svc := NewDraftService(newFakeDraftStore())
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, "P-1", "emp-1", models.DraftData{}, models.SaveTypeAuto); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := svc.Upsert(ctx, "P-2", "emp-1", models.DraftData{}, models.SaveTypeManual); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := svc.Upsert(ctx, "P-3", "emp-2", models.DraftData{}, models.SaveTypeManual); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	all, err := svc.ListByEmployee(ctx, "emp-1", "")
	if err != nil {
		t.Fatalf("ListByEmployee: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered count = %d, want 2", len(all))
	}

	manual, err := svc.ListByEmployee(ctx, "emp-1", models.SaveTypeManual)
	if err != nil {
		t.Fatalf("ListByEmployee manual: %v", err)
	}
	if len(manual) != 1 || manual[0].ProductID != "P-2" {
		t.Errorf("manual filter returned %+v, want only P-2", manual)
	}
}

func TestCleanupStaleAutoSparesManualAndSubmitted(t *testing.T) {
	store := newFakeDraftStore()
	svc := NewDraftService(store)
	ctx := context.Background()

	for productID, saveType := range map[string]models.SaveType{
		"P-1": models.SaveTypeAuto,
		"P-2": models.SaveTypeManual,
		"P-3": models.SaveTypeSubmitted,
	} {
		if _, err := svc.Upsert(ctx, productID, "emp-1", models.DraftData{}, saveType); err != nil {
			t.Fatalf("Upsert %s: %v", productID, err)
		}
	}
	// Age every draft past the cutoff.
	store.mu.Lock()
	for _, d := range store.drafts {
		d.LastSaved = time.Now().Add(-48 * time.Hour)
	}
	store.mu.Unlock()

	purged, err := svc.CleanupStaleAuto(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupStaleAuto: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if store.count() != 2 {
		t.Errorf("remaining = %d, want the manual and submitted drafts", store.count())
	}
}
