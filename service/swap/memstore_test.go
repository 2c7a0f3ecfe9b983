package swapsvc_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sahilm2002/booze-and-books-sub001/model"
	swaprepo "github.com/sahilm2002/booze-and-books-sub001/repository/swap"
)

// memStore is an in-memory swaprepo.Store. InTx serializes units of
// work with a mutex and restores a snapshot when fn fails, matching the
// all-or-nothing semantics of the Postgres store.
type memStore struct {
	mu     sync.Mutex
	books  map[int64]*model.Book
	reqs   map[int64]*model.SwapRequest
	users  map[int64]bool
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		books:  make(map[int64]*model.Book),
		reqs:   make(map[int64]*model.SwapRequest),
		users:  make(map[int64]bool),
		nextID: 1,
	}
}

func (s *memStore) addUser(id int64) { s.users[id] = true }

func (s *memStore) addBook(id, ownerID int64, available bool) {
	s.books[id] = &model.Book{ID: id, OwnerID: ownerID, Available: available, CreatedAt: time.Now()}
}

func (s *memStore) book(id int64) model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.books[id]
}

func (s *memStore) request(id int64) model.SwapRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reqs[id]
}

func (s *memStore) snapshot() (map[int64]*model.Book, map[int64]*model.SwapRequest) {
	books := make(map[int64]*model.Book, len(s.books))
	for id, b := range s.books {
		cp := *b
		books[id] = &cp
	}
	reqs := make(map[int64]*model.SwapRequest, len(s.reqs))
	for id, r := range s.reqs {
		cp := *r
		reqs[id] = &cp
	}
	return books, reqs
}

func (s *memStore) InTx(_ context.Context, fn func(tx swaprepo.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, reqs := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.books, s.reqs = books, reqs
		return err
	}
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*model.SwapRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reqs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) ListForUser(_ context.Context, userID int64) ([]model.SwapRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SwapRequest
	for _, r := range s.reqs {
		if r.IsParty(userID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type memTx struct{ s *memStore }

func (t *memTx) InsertRequest(_ context.Context, r *model.SwapRequest) error {
	r.ID = t.s.nextID
	t.s.nextID++
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	cp := *r
	t.s.reqs[r.ID] = &cp
	return nil
}

func (t *memTx) GetRequestForUpdate(_ context.Context, id int64) (*model.SwapRequest, error) {
	r, ok := t.s.reqs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) UpdateRequestStatus(_ context.Context, id int64, expected model.SwapStatus, set swaprepo.UpdateFields) error {
	r, ok := t.s.reqs[id]
	if !ok || r.Status != expected {
		return swaprepo.ErrStatusConflict
	}
	r.Status = set.Status
	r.UpdatedAt = time.Now().UTC()
	if set.CounterOfferedBookID != nil {
		r.CounterOfferedBookID = set.CounterOfferedBookID
	}
	if set.CounterOfferMessage != nil {
		r.CounterOfferMessage = set.CounterOfferMessage
	}
	if set.CancelledBy != nil {
		r.CancelledBy = set.CancelledBy
	}
	if set.CompletedAt != nil {
		r.CompletedAt = set.CompletedAt
	}
	if set.RequesterCompletedAt != nil {
		r.RequesterCompletedAt = set.RequesterCompletedAt
	}
	if set.OwnerCompletedAt != nil {
		r.OwnerCompletedAt = set.OwnerCompletedAt
	}
	if set.RequesterRating != nil {
		r.RequesterRating = set.RequesterRating
	}
	if set.OwnerRating != nil {
		r.OwnerRating = set.OwnerRating
	}
	if set.RequesterFeedback != nil {
		r.RequesterFeedback = set.RequesterFeedback
	}
	if set.OwnerFeedback != nil {
		r.OwnerFeedback = set.OwnerFeedback
	}
	return nil
}

func (t *memTx) GetBookForUpdate(_ context.Context, bookID int64) (*model.Book, error) {
	b, ok := t.s.books[bookID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (t *memTx) SetBookAvailability(_ context.Context, bookID int64, available bool) error {
	b, ok := t.s.books[bookID]
	if !ok {
		return sql.ErrNoRows
	}
	b.Available = available
	return nil
}

func (t *memTx) SetBookOwner(_ context.Context, bookID int64, newOwnerID int64) error {
	b, ok := t.s.books[bookID]
	if !ok {
		return sql.ErrNoRows
	}
	b.OwnerID = newOwnerID
	b.Available = false
	return nil
}

func (t *memTx) UserExists(_ context.Context, userID int64) (bool, error) {
	return t.s.users[userID], nil
}
