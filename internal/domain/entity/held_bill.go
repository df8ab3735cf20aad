package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HeldBill is a suspended draft parked by a cashier. The captured draft is a
// private copy: nothing the cashier does to the live draft reaches it.
type HeldBill struct {
	ID        string
	Label     string
	HeldBy    uuid.UUID
	CreatedAt time.Time
	draft     *BillDraft
}

// NewHeldBill captures a deep copy of draft.
func NewHeldBill(id, label string, heldBy uuid.UUID, createdAt time.Time, draft *BillDraft) *HeldBill {
	captured := draft.Clone()
	captured.held = true
	return &HeldBill{
		ID:        id,
		Label:     label,
		HeldBy:    heldBy,
		CreatedAt: createdAt,
		draft:     captured,
	}
}

// Snapshot returns the captured bill as it was when held.
func (h *HeldBill) Snapshot() BillSnapshot {
	return h.draft.Snapshot()
}

// Resume hands out a mutable copy of the captured draft.
func (h *HeldBill) Resume() *BillDraft {
	d := h.draft.Clone()
	d.held = false
	return d
}

// Clone returns a copy that shares no draft state with h.
func (h *HeldBill) Clone() *HeldBill {
	cp := *h
	cp.draft = h.draft.Clone()
	return &cp
}

func (h HeldBill) MarshalJSON() ([]byte, error) {
	snap := h.Snapshot()
	return json.Marshal(&struct {
		ID        string       `json:"id"`
		Label     string       `json:"label"`
		HeldBy    uuid.UUID    `json:"held_by"`
		CreatedAt time.Time    `json:"created_at"`
		ItemCount int          `json:"item_count"`
		Total     int64        `json:"total"`
		Bill      BillSnapshot `json:"bill"`
	}{
		ID:        h.ID,
		Label:     h.Label,
		HeldBy:    h.HeldBy,
		CreatedAt: h.CreatedAt,
		ItemCount: snap.ItemCount,
		Total:     snap.Total,
		Bill:      snap,
	})
}
