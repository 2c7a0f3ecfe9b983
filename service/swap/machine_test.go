package swapsvc

import (
	"testing"

	"github.com/sahilm2002/booze-and-books-sub001/model"
)

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to model.SwapStatus }{
		{model.SwapPending, model.SwapAccepted},
		{model.SwapPending, model.SwapCounterOffer},
		{model.SwapPending, model.SwapCancelled},
		{model.SwapCounterOffer, model.SwapAccepted},
		{model.SwapCounterOffer, model.SwapCancelled},
		{model.SwapAccepted, model.SwapCompleted},
		{model.SwapAccepted, model.SwapCancelled},
	}
	for _, tc := range legal {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}

	illegal := []struct{ from, to model.SwapStatus }{
		{model.SwapPending, model.SwapCompleted},
		{model.SwapCounterOffer, model.SwapCounterOffer},
		{model.SwapAccepted, model.SwapCounterOffer},
		{model.SwapCompleted, model.SwapCancelled},
		{model.SwapCompleted, model.SwapAccepted},
		{model.SwapCancelled, model.SwapPending},
		{model.SwapCancelled, model.SwapCompleted},
	}
	for _, tc := range illegal {
		if canTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []model.SwapStatus{model.SwapCompleted, model.SwapCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
		if n := len(allowedTransitions[s]); n != 0 {
			t.Errorf("%s has %d outgoing transitions, want 0", s, n)
		}
	}
}

func TestAcceptorFor(t *testing.T) {
	r := &model.SwapRequest{RequesterID: 1, OwnerID: 2, Status: model.SwapPending}

	got, ok := acceptorFor(r)
	if !ok || got != 2 {
		t.Fatalf("PENDING acceptor = %d, %v; want owner 2", got, ok)
	}

	r.Status = model.SwapCounterOffer
	got, ok = acceptorFor(r)
	if !ok || got != 1 {
		t.Fatalf("COUNTER_OFFER acceptor = %d, %v; want requester 1", got, ok)
	}

	for _, s := range []model.SwapStatus{model.SwapAccepted, model.SwapCompleted, model.SwapCancelled} {
		r.Status = s
		if _, ok := acceptorFor(r); ok {
			t.Errorf("%s should not be acceptable", s)
		}
	}
}

func TestReservedBooks(t *testing.T) {
	offered, counter := int64(11), int64(12)

	cases := []struct {
		name string
		req  *model.SwapRequest
		want []int64
	}{
		{"one-sided", &model.SwapRequest{BookID: 10}, []int64{10}},
		{"with offer", &model.SwapRequest{BookID: 10, OfferedBookID: &offered}, []int64{10, 11}},
		{"offer and counter", &model.SwapRequest{BookID: 10, OfferedBookID: &offered, CounterOfferedBookID: &counter}, []int64{10, 11, 12}},
		{"counter only", &model.SwapRequest{BookID: 10, CounterOfferedBookID: &counter}, []int64{10, 12}},
	}
	for _, tc := range cases {
		got := reservedBooks(tc.req)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestReciprocalBookPrefersCounterOffer(t *testing.T) {
	offered, counter := int64(11), int64(12)

	if got := reciprocalBook(&model.SwapRequest{BookID: 10}); got != nil {
		t.Fatalf("one-sided request: reciprocal = %v, want nil", *got)
	}
	if got := reciprocalBook(&model.SwapRequest{BookID: 10, OfferedBookID: &offered}); got == nil || *got != 11 {
		t.Fatalf("offered only: reciprocal = %v, want 11", got)
	}
	got := reciprocalBook(&model.SwapRequest{BookID: 10, OfferedBookID: &offered, CounterOfferedBookID: &counter})
	if got == nil || *got != 12 {
		t.Fatalf("counter replaces offer: reciprocal = %v, want 12", got)
	}
}
