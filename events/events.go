// Package events defines the domain events the swap engine emits for
// the notification subsystem. One struct per transition kind; each
// carries only the fields that transition produces.
package events

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSwapCreated        Type = "swap.created.v1"
	TypeSwapCounterOffered Type = "swap.counter_offered.v1"
	TypeSwapAccepted       Type = "swap.accepted.v1"
	TypeSwapCancelled      Type = "swap.cancelled.v1"
	TypeSwapCompleted      Type = "swap.completed.v1"
)

// Base is embedded in every event.
type Base struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBase() Base {
	return Base{EventID: uuid.NewString(), OccurredAt: time.Now().UTC()}
}

type Event interface {
	EventType() Type
}

type SwapCreated struct {
	Base
	SwapID        int64  `json:"swap_id"`
	BookID        int64  `json:"book_id"`
	OfferedBookID *int64 `json:"offered_book_id,omitempty"`
	RequesterID   int64  `json:"requester_id"`
	OwnerID       int64  `json:"owner_id"`
}

type SwapCounterOffered struct {
	Base
	SwapID        int64 `json:"swap_id"`
	CounterBookID int64 `json:"counter_book_id"`
	OwnerID       int64 `json:"owner_id"`
}

type SwapAccepted struct {
	Base
	SwapID     int64 `json:"swap_id"`
	AcceptedBy int64 `json:"accepted_by"`
}

type SwapCancelled struct {
	Base
	SwapID          int64   `json:"swap_id"`
	CancelledBy     int64   `json:"cancelled_by"`
	ReleasedBookIDs []int64 `json:"released_book_ids"`
}

type SwapCompleted struct {
	Base
	SwapID           int64  `json:"swap_id"`
	BookID           int64  `json:"book_id"`
	NewOwnerID       int64  `json:"new_owner_id"`
	ReciprocalBookID *int64 `json:"reciprocal_book_id,omitempty"`
}

func (SwapCreated) EventType() Type        { return TypeSwapCreated }
func (SwapCounterOffered) EventType() Type { return TypeSwapCounterOffered }
func (SwapAccepted) EventType() Type       { return TypeSwapAccepted }
func (SwapCancelled) EventType() Type      { return TypeSwapCancelled }
func (SwapCompleted) EventType() Type      { return TypeSwapCompleted }
