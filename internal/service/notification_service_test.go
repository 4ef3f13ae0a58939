package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/utils"
)

func validNotificationRequest() *CreateNotificationRequest {
	return &CreateNotificationRequest{
		Message:      "Edit submitted for product Acme Cola",
		Type:         models.NotificationTypeEditing,
		SenderID:     uuid.New().String(),
		ReceiverRole: models.RoleAdmin,
		RelatedID:    "P-100",
	}
}

func TestNotificationCreateRequiresAllFields(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	mutations := map[string]func(*CreateNotificationRequest){
		"message":      func(r *CreateNotificationRequest) { r.Message = "" },
		"type":         func(r *CreateNotificationRequest) { r.Type = "" },
		"senderId":     func(r *CreateNotificationRequest) { r.SenderID = "" },
		"receiverRole": func(r *CreateNotificationRequest) { r.ReceiverRole = "" },
		"relatedId":    func(r *CreateNotificationRequest) { r.RelatedID = "" },
	}
	for field, mutate := range mutations {
		req := validNotificationRequest()
		mutate(req)
		_, err := svc.Create(ctx, req)
		appErr, ok := utils.AsAppError(err)
		if !ok || appErr.Kind != utils.KindInvalidArgument {
			t.Errorf("missing %s: error = %v, want InvalidArgument", field, err)
		}
	}
	if store.count() != 0 {
		t.Errorf("store holds %d notifications after rejected creates, want 0", store.count())
	}
}

func TestNotificationCreateRejectsMalformedSender(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationStore())

	req := validNotificationRequest()
	req.SenderID = "store-42"
	_, err := svc.Create(context.Background(), req)
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Kind != utils.KindInvalidArgument {
		t.Fatalf("error = %v, want InvalidArgument for non-uuid senderId", err)
	}
}

func TestNotificationDeleteMatchingIsIdempotent(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	req := validNotificationRequest()
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.DeleteMatching(ctx, req.RelatedID, req.SenderID, req.Type); err != nil {
		t.Fatalf("first DeleteMatching: %v", err)
	}
	if store.count() != 0 {
		t.Errorf("count = %d after delete, want 0", store.count())
	}
	// Matching nothing must still succeed.
	if err := svc.DeleteMatching(ctx, req.RelatedID, req.SenderID, req.Type); err != nil {
		t.Fatalf("second DeleteMatching: %v", err)
	}
}

func TestNotificationListByTypeNewestFirst(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := svc.Create(ctx, validNotificationRequest())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, n.ID)
	}

	notes, err := svc.ListByType(ctx, models.NotificationTypeEditing)
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("count = %d, want 3", len(notes))
	}
	for i, n := range notes {
		if want := ids[len(ids)-1-i]; n.ID != want {
			t.Errorf("notes[%d].ID = %q, want %q (newest first)", i, n.ID, want)
		}
	}

	_, err = svc.ListByType(ctx, "")
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Kind != utils.KindInvalidArgument {
		t.Errorf("empty type error = %v, want InvalidArgument", err)
	}
}

func TestNotificationMarkReadMissingIsNotFound(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationStore())

	err := svc.MarkRead(context.Background(), uuid.New().String())
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Kind != utils.KindNotFound {
		t.Fatalf("error = %v, want NotFound", err)
	}
}
