package model

import "time"

type SwapStatus string

const (
	SwapPending      SwapStatus = "PENDING"
	SwapCounterOffer SwapStatus = "COUNTER_OFFER"
	SwapAccepted     SwapStatus = "ACCEPTED"
	SwapCompleted    SwapStatus = "COMPLETED"
	SwapCancelled    SwapStatus = "CANCELLED"
)

func (s SwapStatus) IsTerminal() bool {
	return s == SwapCompleted || s == SwapCancelled
}

func (s SwapStatus) String() string { return string(s) }

// SwapRequest is one negotiation between a requester and the owner of
// the requested book. OwnerID is captured when the request is created
// and never rewritten, even after ownership transfers.
type SwapRequest struct {
	ID          int64      `json:"id"`
	BookID      int64      `json:"book_id"`
	RequesterID int64      `json:"requester_id"`
	OwnerID     int64      `json:"owner_id"`
	Status      SwapStatus `json:"status"`
	Message     *string    `json:"message,omitempty"`

	OfferedBookID        *int64  `json:"offered_book_id,omitempty"`
	CounterOfferedBookID *int64  `json:"counter_offered_book_id,omitempty"`
	CounterOfferMessage  *string `json:"counter_offer_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledBy *int64     `json:"cancelled_by,omitempty"`

	RequesterCompletedAt *time.Time `json:"requester_completed_at,omitempty"`
	OwnerCompletedAt     *time.Time `json:"owner_completed_at,omitempty"`
	RequesterRating      *int       `json:"requester_rating,omitempty"`
	OwnerRating          *int       `json:"owner_rating,omitempty"`
	RequesterFeedback    *string    `json:"requester_feedback,omitempty"`
	OwnerFeedback        *string    `json:"owner_feedback,omitempty"`
}

// IsParty reports whether userID is the requester or the owner.
func (r *SwapRequest) IsParty(userID int64) bool {
	return userID == r.RequesterID || userID == r.OwnerID
}

// HasCompleted reports whether the given party already recorded their
// half of the completion. Callers must pass a party of the swap.
func (r *SwapRequest) HasCompleted(userID int64) bool {
	switch userID {
	case r.RequesterID:
		return r.RequesterCompletedAt != nil
	case r.OwnerID:
		return r.OwnerCompletedAt != nil
	}
	return false
}
