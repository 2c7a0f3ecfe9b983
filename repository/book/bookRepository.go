package bookrepo

import (
	"context"
	"database/sql"

	"github.com/sahilm2002/booze-and-books-sub001/model"
)

type Repo interface {
	Create(ctx context.Context, ownerID int64, title, author string) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)

	// ListAvailable returns books open for swap requests, excluding the
	// viewer's own books.
	ListAvailable(ctx context.Context, viewerID int64) ([]model.Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error)

	// SetAvailability flips the listing flag outside any swap. The
	// caller checks ownership and swap references first.
	SetAvailability(ctx context.Context, bookID int64, available bool) error

	// ReferencedByActiveSwap reports whether any non-terminal swap
	// request holds the book as requested, offered, or counter-offered.
	ReferencedByActiveSwap(ctx context.Context, bookID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, ownerID int64, title, author string) (int64, error) {
	const q = `
INSERT INTO books (owner_id, title, author, available)
VALUES ($1,$2,$3,TRUE)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, ownerID, title, author).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, owner_id, title, author, available, created_at
FROM books
WHERE id = $1`
	var b model.Book
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Available, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) ListAvailable(ctx context.Context, viewerID int64) ([]model.Book, error) {
	const q = `
	SELECT id, owner_id, title, author, available, created_at
	FROM books
	WHERE available = TRUE
	  AND owner_id <> $1
	ORDER BY id DESC`
	return r.list(ctx, q, viewerID)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error) {
	const q = `
	SELECT id, owner_id, title, author, available, created_at
	FROM books
	WHERE owner_id = $1
	ORDER BY id DESC`
	return r.list(ctx, q, ownerID)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Available, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) SetAvailability(ctx context.Context, bookID int64, available bool) error {
	const q = `
	UPDATE books
	SET available = $2
	WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, bookID, available)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ReferencedByActiveSwap(ctx context.Context, bookID int64) (bool, error) {
	const q = `
	SELECT EXISTS (
		SELECT 1
		FROM swap_requests
		WHERE status NOT IN ('COMPLETED','CANCELLED')
		  AND (book_id = $1 OR offered_book_id = $1 OR counter_offered_book_id = $1)
	)`
	var ref bool
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&ref)
	return ref, err
}
