// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/sahilm2002/booze-and-books-sub001/model"
	booksvc "github.com/sahilm2002/booze-and-books-sub001/service/book"
)

type repoMock struct {
	createFn      func(ctx context.Context, ownerID int64, title, author string) (int64, error)
	detailFn      func(ctx context.Context, id int64) (*model.Book, error)
	listAvailFn   func(ctx context.Context, viewerID int64) ([]model.Book, error)
	listByOwnerFn func(ctx context.Context, ownerID int64) ([]model.Book, error)
	setAvailFn    func(ctx context.Context, bookID int64, available bool) error
	referencedFn  func(ctx context.Context, bookID int64) (bool, error)
	setAvailCalls int
}

func (m *repoMock) Create(ctx context.Context, ownerID int64, title, author string) (int64, error) {
	return m.createFn(ctx, ownerID, title, author)
}
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) ListAvailable(ctx context.Context, viewerID int64) ([]model.Book, error) {
	return m.listAvailFn(ctx, viewerID)
}
func (m *repoMock) ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error) {
	return m.listByOwnerFn(ctx, ownerID)
}
func (m *repoMock) SetAvailability(ctx context.Context, bookID int64, available bool) error {
	m.setAvailCalls++
	if m.setAvailFn == nil {
		return nil
	}
	return m.setAvailFn(ctx, bookID, available)
}
func (m *repoMock) ReferencedByActiveSwap(ctx context.Context, bookID int64) (bool, error) {
	return m.referencedFn(ctx, bookID)
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), 1, "", "Author"); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatal("expected bad input for empty title")
	}
	if _, err := s.Create(context.Background(), 1, "Title", ""); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatal("expected bad input for empty author")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, ownerID int64, title, author string) (int64, error) {
			if ownerID != 7 || title != "Clean Code" || author != "Martin" {
				return 0, errors.New("bad args")
			}
			return 42, nil
		},
	}
	s := booksvc.New(m)
	id, err := s.Create(context.Background(), 7, "Clean Code", "Martin")
	if err != nil || id != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", id, err)
	}
}

func TestRelist_OwnerOnly(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: 7, Available: false}, nil
		},
	}
	s := booksvc.New(m)
	if err := s.Relist(context.Background(), 8, 1); booksvc.Code(err) != booksvc.ErrNotOwner {
		t.Fatalf("got %v; want NOT_OWNER", err)
	}
	if m.setAvailCalls != 0 {
		t.Fatal("availability must not change for a non-owner")
	}
}

func TestRelist_RefusedWhileReserved(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: 7, Available: false}, nil
		},
		referencedFn: func(ctx context.Context, bookID int64) (bool, error) { return true, nil },
	}
	s := booksvc.New(m)
	if err := s.Relist(context.Background(), 7, 1); booksvc.Code(err) != booksvc.ErrReserved {
		t.Fatalf("got %v; want RESERVED", err)
	}
	if m.setAvailCalls != 0 {
		t.Fatal("availability must not change while a swap holds the book")
	}
}

func TestRelist_Success(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: 7, Available: false}, nil
		},
		referencedFn: func(ctx context.Context, bookID int64) (bool, error) { return false, nil },
	}
	s := booksvc.New(m)
	if err := s.Relist(context.Background(), 7, 1); err != nil {
		t.Fatalf("relist error: %v", err)
	}
	if m.setAvailCalls != 1 {
		t.Fatalf("setAvailability called %d times; want 1", m.setAvailCalls)
	}
}

func TestRelist_NoopWhenAlreadyListed(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: 7, Available: true}, nil
		},
	}
	s := booksvc.New(m)
	if err := s.Relist(context.Background(), 7, 1); err != nil {
		t.Fatalf("relist error: %v", err)
	}
	if m.setAvailCalls != 0 {
		t.Fatal("no write expected when state already matches")
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)
	if _, err := s.Detail(context.Background(), 99); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("got %v; want NOT_FOUND", err)
	}
}
