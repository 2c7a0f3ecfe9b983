package swapsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/sahilm2002/booze-and-books-sub001/events"
	"github.com/sahilm2002/booze-and-books-sub001/model"
	swaprepo "github.com/sahilm2002/booze-and-books-sub001/repository/swap"
)

// Service is the swap engine. Each method runs one transition as a
// single unit of work against the store: the request row and every book
// row it touches are locked inside that unit, the status write is a
// compare-and-swap, and either everything commits or nothing does.
type Service interface {
	Create(ctx context.Context, requesterID, bookID int64, offeredBookID *int64, message *string) (*model.SwapRequest, error)
	CounterOffer(ctx context.Context, requestID, actorID, counterBookID int64, message *string) (*model.SwapRequest, error)
	Accept(ctx context.Context, requestID, actorID int64) (*model.SwapRequest, error)
	Cancel(ctx context.Context, requestID, actorID int64) (*model.SwapRequest, error)
	Complete(ctx context.Context, requestID, actorID int64, rating int, feedback *string) (*model.SwapRequest, error)

	Get(ctx context.Context, requestID, viewerID int64) (*model.SwapRequest, error)
	ListMine(ctx context.Context, userID int64) ([]model.SwapRequest, error)
}

type service struct {
	store swaprepo.Store
	pub   events.Publisher
	log   *slog.Logger
}

func New(store swaprepo.Store, pub events.Publisher, log *slog.Logger) Service {
	return &service{store: store, pub: pub, log: log}
}

// Create opens a negotiation: reserves the requested book (and the
// offered one, if any) and inserts a PENDING request.
func (s *service) Create(ctx context.Context, requesterID, bookID int64, offeredBookID *int64, message *string) (*model.SwapRequest, error) {
	if requesterID <= 0 || bookID <= 0 {
		return nil, makeErr(ErrValidation, "invalid requester or book id")
	}
	if offeredBookID != nil && *offeredBookID == bookID {
		return nil, makeErr(ErrValidation, "offered book equals requested book")
	}

	var req *model.SwapRequest
	err := s.store.InTx(ctx, func(tx swaprepo.Tx) error {
		exists, err := tx.UserExists(ctx, requesterID)
		if err != nil {
			return err
		}
		if !exists {
			return makeErr(ErrNotFound, "requester not found")
		}

		ids := []int64{bookID}
		if offeredBookID != nil {
			ids = append(ids, *offeredBookID)
		}
		books, err := lockBooks(ctx, tx, ids)
		if err != nil {
			return err
		}

		requested := books[bookID]
		if requested.OwnerID == requesterID {
			return makeErr(ErrValidation, "cannot request own book")
		}
		if !requested.Available {
			return makeErr(ErrConflict, "book is not available for swap")
		}
		if offeredBookID != nil {
			offered := books[*offeredBookID]
			if offered.OwnerID != requesterID {
				return makeErr(ErrValidation, "offered book not owned by requester")
			}
			if !offered.Available {
				return makeErr(ErrConflict, "offered book is not available")
			}
		}

		req = &model.SwapRequest{
			BookID:        bookID,
			RequesterID:   requesterID,
			OwnerID:       requested.OwnerID,
			Status:        model.SwapPending,
			Message:       message,
			OfferedBookID: offeredBookID,
		}
		if err := tx.InsertRequest(ctx, req); err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.SetBookAvailability(ctx, id, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.pub.Publish(ctx, events.SwapCreated{
		Base:          events.NewBase(),
		SwapID:        req.ID,
		BookID:        req.BookID,
		OfferedBookID: req.OfferedBookID,
		RequesterID:   req.RequesterID,
		OwnerID:       req.OwnerID,
	})
	return req, nil
}

// CounterOffer substitutes one of the owner's books for the requested
// one. Legal only while PENDING, only for the owner.
func (s *service) CounterOffer(ctx context.Context, requestID, actorID, counterBookID int64, message *string) (*model.SwapRequest, error) {
	if counterBookID <= 0 {
		return nil, makeErr(ErrValidation, "invalid counter-offer book id")
	}

	var req *model.SwapRequest
	err := s.store.InTx(ctx, func(tx swaprepo.Tx) error {
		var err error
		req, err = loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if actorID != req.OwnerID {
			return makeErr(ErrForbidden, "only the owner may counter-offer")
		}
		if !canTransition(req.Status, model.SwapCounterOffer) {
			return makeErr(ErrInvalidTransition, "counter-offer not legal from "+req.Status.String())
		}
		if counterBookID == req.BookID {
			return makeErr(ErrValidation, "counter-offer book equals requested book")
		}

		counter, err := tx.GetBookForUpdate(ctx, counterBookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound, "counter-offer book not found")
		}
		if err != nil {
			return err
		}
		if counter.OwnerID != actorID {
			return makeErr(ErrValidation, "counter-offer book not owned by owner")
		}
		if !counter.Available {
			return makeErr(ErrConflict, "counter-offer book is not available")
		}

		if err := tx.UpdateRequestStatus(ctx, req.ID, req.Status, swaprepo.UpdateFields{
			Status:               model.SwapCounterOffer,
			CounterOfferedBookID: &counterBookID,
			CounterOfferMessage:  message,
		}); err != nil {
			return err
		}
		if err := tx.SetBookAvailability(ctx, counterBookID, false); err != nil {
			return err
		}
		req.Status = model.SwapCounterOffer
		req.CounterOfferedBookID = &counterBookID
		req.CounterOfferMessage = message
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.pub.Publish(ctx, events.SwapCounterOffered{
		Base:          events.NewBase(),
		SwapID:        req.ID,
		CounterBookID: counterBookID,
		OwnerID:       req.OwnerID,
	})
	return req, nil
}

// Accept commits both parties to the arranged terms. The owner accepts
// a PENDING request; the requester accepts a COUNTER_OFFER. No
// ownership changes yet.
func (s *service) Accept(ctx context.Context, requestID, actorID int64) (*model.SwapRequest, error) {
	var req *model.SwapRequest
	err := s.store.InTx(ctx, func(tx swaprepo.Tx) error {
		var err error
		req, err = loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.IsParty(actorID) {
			return makeErr(ErrForbidden, "not a party to this swap")
		}
		acceptor, ok := acceptorFor(req)
		if !ok {
			return makeErr(ErrInvalidTransition, "accept not legal from "+req.Status.String())
		}
		if actorID != acceptor {
			return makeErr(ErrForbidden, "not this party's turn to accept")
		}

		if err := tx.UpdateRequestStatus(ctx, req.ID, req.Status, swaprepo.UpdateFields{
			Status: model.SwapAccepted,
		}); err != nil {
			return err
		}
		req.Status = model.SwapAccepted
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.pub.Publish(ctx, events.SwapAccepted{
		Base:       events.NewBase(),
		SwapID:     req.ID,
		AcceptedBy: actorID,
	})
	return req, nil
}

// Cancel ends the negotiation and releases every book it reserved.
// Either party may cancel while PENDING, COUNTER_OFFER, or ACCEPTED.
func (s *service) Cancel(ctx context.Context, requestID, actorID int64) (*model.SwapRequest, error) {
	var (
		req      *model.SwapRequest
		released []int64
	)
	err := s.store.InTx(ctx, func(tx swaprepo.Tx) error {
		var err error
		req, err = loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.IsParty(actorID) {
			return makeErr(ErrForbidden, "not a party to this swap")
		}
		if !canTransition(req.Status, model.SwapCancelled) {
			return makeErr(ErrInvalidTransition, "cancel not legal from "+req.Status.String())
		}

		if err := tx.UpdateRequestStatus(ctx, req.ID, req.Status, swaprepo.UpdateFields{
			Status:      model.SwapCancelled,
			CancelledBy: &actorID,
		}); err != nil {
			return err
		}
		released = reservedBooks(req)
		for _, id := range released {
			if err := tx.SetBookAvailability(ctx, id, true); err != nil {
				return err
			}
		}
		req.Status = model.SwapCancelled
		req.CancelledBy = &actorID
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.pub.Publish(ctx, events.SwapCancelled{
		Base:            events.NewBase(),
		SwapID:          req.ID,
		CancelledBy:     actorID,
		ReleasedBookIDs: released,
	})
	return req, nil
}

// Complete records the actor's confirmation and rating. The second
// party to complete fires the ownership transfer inside the same unit
// of work and moves the request to COMPLETED.
func (s *service) Complete(ctx context.Context, requestID, actorID int64, rating int, feedback *string) (*model.SwapRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, makeErr(ErrValidation, "rating must be between 1 and 5")
	}

	var (
		req  *model.SwapRequest
		done bool
	)
	err := s.store.InTx(ctx, func(tx swaprepo.Tx) error {
		var err error
		req, err = loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.IsParty(actorID) {
			return makeErr(ErrForbidden, "not a party to this swap")
		}
		if !canTransition(req.Status, model.SwapCompleted) {
			return makeErr(ErrInvalidTransition, "complete not legal from "+req.Status.String())
		}
		if req.HasCompleted(actorID) {
			return makeErr(ErrInvalidTransition, "already completed by this party")
		}

		now := time.Now().UTC()
		set := swaprepo.UpdateFields{Status: req.Status}
		if actorID == req.RequesterID {
			set.RequesterCompletedAt = &now
			set.RequesterRating = &rating
			set.RequesterFeedback = feedback
			req.RequesterCompletedAt = &now
			req.RequesterRating = &rating
			req.RequesterFeedback = feedback
		} else {
			set.OwnerCompletedAt = &now
			set.OwnerRating = &rating
			set.OwnerFeedback = feedback
			req.OwnerCompletedAt = &now
			req.OwnerRating = &rating
			req.OwnerFeedback = feedback
		}

		done = req.HasCompleted(otherParty(req, actorID))
		if done {
			if err := transferOwnership(ctx, tx, req); err != nil {
				return err
			}
			// A counter-offer displaced the originally offered book;
			// it was never part of the exchange, so give it back.
			if req.CounterOfferedBookID != nil && req.OfferedBookID != nil {
				if err := tx.SetBookAvailability(ctx, *req.OfferedBookID, true); err != nil {
					return err
				}
			}
			set.Status = model.SwapCompleted
			set.CompletedAt = &now
			req.Status = model.SwapCompleted
			req.CompletedAt = &now
		}

		return tx.UpdateRequestStatus(ctx, req.ID, model.SwapAccepted, set)
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if done {
		s.pub.Publish(ctx, events.SwapCompleted{
			Base:             events.NewBase(),
			SwapID:           req.ID,
			BookID:           req.BookID,
			NewOwnerID:       req.RequesterID,
			ReciprocalBookID: reciprocalBook(req),
		})
	}
	return req, nil
}

func (s *service) Get(ctx context.Context, requestID, viewerID int64) (*model.SwapRequest, error) {
	req, err := s.store.GetByID(ctx, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound, "swap request not found")
	}
	if err != nil {
		return nil, err
	}
	if !req.IsParty(viewerID) {
		return nil, makeErr(ErrForbidden, "not a party to this swap")
	}
	return req, nil
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]model.SwapRequest, error) {
	return s.store.ListForUser(ctx, userID)
}

// transferOwnership validates and applies the book-owner swap. Both
// preconditions are checked against the request's recorded parties; a
// mismatch means another completed swap moved a book in the meantime,
// and the whole transition must roll back.
func transferOwnership(ctx context.Context, tx swaprepo.Tx, req *model.SwapRequest) error {
	reciprocal := reciprocalBook(req)

	ids := []int64{req.BookID}
	if reciprocal != nil {
		ids = append(ids, *reciprocal)
	}
	books, err := lockBooks(ctx, tx, ids)
	if err != nil {
		return err
	}

	if books[req.BookID].OwnerID != req.OwnerID {
		return makeErr(ErrOwnershipMismatch, "requested book no longer owned by swap owner")
	}
	if reciprocal != nil && books[*reciprocal].OwnerID != req.RequesterID {
		return makeErr(ErrOwnershipMismatch, "reciprocal book no longer owned by requester")
	}

	if err := tx.SetBookOwner(ctx, req.BookID, req.RequesterID); err != nil {
		return err
	}
	if reciprocal != nil {
		if err := tx.SetBookOwner(ctx, *reciprocal, req.OwnerID); err != nil {
			return err
		}
	}
	return nil
}

// lockBooks takes FOR UPDATE locks on all given books in ascending id
// order, so transitions over crossing swaps cannot deadlock.
func lockBooks(ctx context.Context, tx swaprepo.Tx, ids []int64) (map[int64]*model.Book, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	books := make(map[int64]*model.Book, len(sorted))
	for _, id := range sorted {
		b, err := tx.GetBookForUpdate(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound, "book not found")
		}
		if err != nil {
			return nil, err
		}
		books[id] = b
	}
	return books, nil
}

func loadRequest(ctx context.Context, tx swaprepo.Tx, id int64) (*model.SwapRequest, error) {
	req, err := tx.GetRequestForUpdate(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound, "swap request not found")
	}
	return req, err
}

// mapStoreErr turns a lost CAS race into the Conflict kind. Callers may
// retry the whole operation once with fresh state; the engine does not.
func mapStoreErr(err error) error {
	if errors.Is(err, swaprepo.ErrStatusConflict) {
		return makeErr(ErrConflict, "swap request changed concurrently")
	}
	return err
}
