package sse

import (
	"time"

	"github.com/stocklens/catalog-api/internal/models"
)

// ReviewNotifier is the interface services use to emit review lifecycle
// events to connected admins.
type ReviewNotifier interface {
	NotifyDraftSubmitted(d *models.Draft)
	NotifyDraftApproved(d *models.Draft)
	NotifyDraftRejected(d *models.Draft)
}

// HubNotifier implements ReviewNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyDraftSubmitted(d *models.Draft) {
	n.broadcast(EventDraftSubmitted, d)
}

func (n *HubNotifier) NotifyDraftApproved(d *models.Draft) {
	n.broadcast(EventDraftApproved, d)
}

func (n *HubNotifier) NotifyDraftRejected(d *models.Draft) {
	n.broadcast(EventDraftRejected, d)
}

func (n *HubNotifier) broadcast(eventType EventType, d *models.Draft) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&ReviewEvent{
		Event:      eventType,
		DraftID:    d.ID,
		ProductID:  d.ProductID,
		EmployeeID: d.EmployeeID,
		Barcode:    d.Data.Barcode,
		Timestamp:  time.Now(),
	})
}
