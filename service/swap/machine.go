package swapsvc

import "github.com/sahilm2002/booze-and-books-sub001/model"

// allowedTransitions maps a status to the statuses it may move to.
// COMPLETED and CANCELLED are terminal.
var allowedTransitions = map[model.SwapStatus][]model.SwapStatus{
	model.SwapPending:      {model.SwapAccepted, model.SwapCounterOffer, model.SwapCancelled},
	model.SwapCounterOffer: {model.SwapAccepted, model.SwapCancelled},
	model.SwapAccepted:     {model.SwapCompleted, model.SwapCancelled},
	model.SwapCompleted:    {},
	model.SwapCancelled:    {},
}

func canTransition(from, to model.SwapStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// acceptorFor returns which party may accept the request in its current
// status: the owner answers a PENDING request, the requester answers a
// COUNTER_OFFER. ok is false when the status is not acceptable at all.
func acceptorFor(r *model.SwapRequest) (userID int64, ok bool) {
	switch r.Status {
	case model.SwapPending:
		return r.OwnerID, true
	case model.SwapCounterOffer:
		return r.RequesterID, true
	}
	return 0, false
}

// reservedBooks enumerates every book held unavailable by this request:
// requested, offered, and counter-offered, whichever are set. Cancel
// must release all of them.
func reservedBooks(r *model.SwapRequest) []int64 {
	ids := []int64{r.BookID}
	if r.OfferedBookID != nil {
		ids = append(ids, *r.OfferedBookID)
	}
	if r.CounterOfferedBookID != nil {
		ids = append(ids, *r.CounterOfferedBookID)
	}
	return ids
}

// reciprocalBook is the book the original owner receives at completion.
// A counter-offer, once made, replaces the originally offered book.
// Nil for a one-sided request.
func reciprocalBook(r *model.SwapRequest) *int64 {
	if r.CounterOfferedBookID != nil {
		return r.CounterOfferedBookID
	}
	return r.OfferedBookID
}

// otherParty returns the counterpart of a party of the swap.
func otherParty(r *model.SwapRequest, userID int64) int64 {
	if userID == r.RequesterID {
		return r.OwnerID
	}
	return r.RequesterID
}
