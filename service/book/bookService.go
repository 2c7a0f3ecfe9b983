package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sahilm2002/booze-and-books-sub001/model"
)

type Book = model.Book

// errors used by controllers

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrNotOwner ErrCode = "NOT_OWNER"
	ErrReserved ErrCode = "RESERVED"
	ErrBadInput ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Create(ctx context.Context, ownerID int64, title, author string) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	ListAvailable(ctx context.Context, viewerID int64) ([]model.Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error)
	SetAvailability(ctx context.Context, bookID int64, available bool) error
	ReferencedByActiveSwap(ctx context.Context, bookID int64) (bool, error)
}

type Service interface {
	Create(ctx context.Context, ownerID int64, title, author string) (int64, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	ListAvailable(ctx context.Context, viewerID int64) ([]Book, error)
	MyBooks(ctx context.Context, ownerID int64) ([]Book, error)

	// Relist puts a book the caller owns back on the swap market, and
	// Unlist withdraws it. Both refuse while a live swap holds the
	// book: its availability flag belongs to the engine then.
	Relist(ctx context.Context, ownerID, bookID int64) error
	Unlist(ctx context.Context, ownerID, bookID int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, ownerID int64, title, author string) (int64, error) {
	if title == "" || author == "" {
		return 0, makeErr(ErrBadInput)
	}
	return s.r.Create(ctx, ownerID, title, author)
}

func (s *service) Detail(ctx context.Context, id int64) (*Book, error) {
	b, err := s.r.Detail(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return b, err
}

func (s *service) ListAvailable(ctx context.Context, viewerID int64) ([]Book, error) {
	return s.r.ListAvailable(ctx, viewerID)
}

func (s *service) MyBooks(ctx context.Context, ownerID int64) ([]Book, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

func (s *service) Relist(ctx context.Context, ownerID, bookID int64) error {
	return s.setAvailability(ctx, ownerID, bookID, true)
}

func (s *service) Unlist(ctx context.Context, ownerID, bookID int64) error {
	return s.setAvailability(ctx, ownerID, bookID, false)
}

func (s *service) setAvailability(ctx context.Context, ownerID, bookID int64, available bool) error {
	b, err := s.r.Detail(ctx, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrNotFound)
	}
	if err != nil {
		return err
	}
	if b.OwnerID != ownerID {
		return makeErr(ErrNotOwner)
	}
	if b.Available == available {
		return nil
	}
	referenced, err := s.r.ReferencedByActiveSwap(ctx, bookID)
	if err != nil {
		return err
	}
	if referenced {
		return makeErr(ErrReserved)
	}
	return s.r.SetAvailability(ctx, bookID, available)
}
