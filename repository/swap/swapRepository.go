package swaprepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sahilm2002/booze-and-books-sub001/model"
)

// ErrStatusConflict is returned when the compare-and-swap status update
// matched no row: the stored status no longer equals the expected one.
var ErrStatusConflict = errors.New("swap request status changed concurrently")

// UpdateFields carries the column writes of one transition. Nil
// pointers leave the stored value untouched.
type UpdateFields struct {
	Status model.SwapStatus

	CounterOfferedBookID *int64
	CounterOfferMessage  *string

	CancelledBy *int64
	CompletedAt *time.Time

	RequesterCompletedAt *time.Time
	OwnerCompletedAt     *time.Time
	RequesterRating      *int
	OwnerRating          *int
	RequesterFeedback    *string
	OwnerFeedback        *string
}

// Ledger is the book availability ledger. All methods run inside the
// transition's transaction; GetBookForUpdate takes the row lock that
// serializes every transition touching the same book.
type Ledger interface {
	GetBookForUpdate(ctx context.Context, bookID int64) (*model.Book, error)
	SetBookAvailability(ctx context.Context, bookID int64, available bool) error
	SetBookOwner(ctx context.Context, bookID int64, newOwnerID int64) error
}

// Requests is the swap request store. UpdateRequestStatus is a
// compare-and-swap on status.
type Requests interface {
	InsertRequest(ctx context.Context, r *model.SwapRequest) error
	GetRequestForUpdate(ctx context.Context, id int64) (*model.SwapRequest, error)
	UpdateRequestStatus(ctx context.Context, id int64, expected model.SwapStatus, set UpdateFields) error
}

// Tx is the unit of work one transition runs in.
type Tx interface {
	Requests
	Ledger
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Store opens units of work and serves read-only lookups.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetByID(ctx context.Context, id int64) (*model.SwapRequest, error)
	ListForUser(ctx context.Context, userID int64) ([]model.SwapRequest, error)
}

type store struct{ db *sql.DB }

func New(db *sql.DB) Store { return &store{db: db} }

func (s *store) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

const requestColumns = `
	id, book_id, requester_id, owner_id, status, message,
	offered_book_id, counter_offered_book_id, counter_offer_message,
	created_at, updated_at, completed_at, cancelled_by,
	requester_completed_at, owner_completed_at,
	requester_rating, owner_rating, requester_feedback, owner_feedback`

func scanRequest(row interface{ Scan(...any) error }) (*model.SwapRequest, error) {
	var r model.SwapRequest
	err := row.Scan(
		&r.ID, &r.BookID, &r.RequesterID, &r.OwnerID, &r.Status, &r.Message,
		&r.OfferedBookID, &r.CounterOfferedBookID, &r.CounterOfferMessage,
		&r.CreatedAt, &r.UpdatedAt, &r.CompletedAt, &r.CancelledBy,
		&r.RequesterCompletedAt, &r.OwnerCompletedAt,
		&r.RequesterRating, &r.OwnerRating, &r.RequesterFeedback, &r.OwnerFeedback,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *store) GetByID(ctx context.Context, id int64) (*model.SwapRequest, error) {
	const q = `SELECT` + requestColumns + `
	FROM swap_requests
	WHERE id = $1`
	return scanRequest(s.db.QueryRowContext(ctx, q, id))
}

func (s *store) ListForUser(ctx context.Context, userID int64) ([]model.SwapRequest, error) {
	const q = `SELECT` + requestColumns + `
	FROM swap_requests
	WHERE requester_id = $1 OR owner_id = $1
	ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SwapRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// pgTx implements Tx over one *sql.Tx.
type pgTx struct{ tx *sql.Tx }

func (t *pgTx) InsertRequest(ctx context.Context, r *model.SwapRequest) error {
	const q = `
	INSERT INTO swap_requests
		(book_id, requester_id, owner_id, status, message, offered_book_id)
	VALUES ($1,$2,$3,$4,$5,$6)
	RETURNING id, created_at, updated_at`
	return t.tx.QueryRowContext(ctx, q,
		r.BookID, r.RequesterID, r.OwnerID, r.Status, r.Message, r.OfferedBookID,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (t *pgTx) GetRequestForUpdate(ctx context.Context, id int64) (*model.SwapRequest, error) {
	const q = `SELECT` + requestColumns + `
	FROM swap_requests
	WHERE id = $1
	FOR UPDATE`
	return scanRequest(t.tx.QueryRowContext(ctx, q, id))
}

func (t *pgTx) UpdateRequestStatus(ctx context.Context, id int64, expected model.SwapStatus, set UpdateFields) error {
	const q = `
	UPDATE swap_requests
	SET status                  = $3,
		counter_offered_book_id = COALESCE($4,  counter_offered_book_id),
		counter_offer_message   = COALESCE($5,  counter_offer_message),
		cancelled_by            = COALESCE($6,  cancelled_by),
		completed_at            = COALESCE($7,  completed_at),
		requester_completed_at  = COALESCE($8,  requester_completed_at),
		owner_completed_at      = COALESCE($9,  owner_completed_at),
		requester_rating        = COALESCE($10, requester_rating),
		owner_rating            = COALESCE($11, owner_rating),
		requester_feedback      = COALESCE($12, requester_feedback),
		owner_feedback          = COALESCE($13, owner_feedback),
		updated_at              = NOW()
	WHERE id = $1
	  AND status = $2`
	res, err := t.tx.ExecContext(ctx, q, id, expected, set.Status,
		set.CounterOfferedBookID, set.CounterOfferMessage,
		set.CancelledBy, set.CompletedAt,
		set.RequesterCompletedAt, set.OwnerCompletedAt,
		set.RequesterRating, set.OwnerRating,
		set.RequesterFeedback, set.OwnerFeedback,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (t *pgTx) GetBookForUpdate(ctx context.Context, bookID int64) (*model.Book, error) {
	const q = `
	SELECT id, owner_id, title, author, available, created_at
	FROM books
	WHERE id = $1
	FOR UPDATE`
	var b model.Book
	if err := t.tx.QueryRowContext(ctx, q, bookID).Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Available, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *pgTx) SetBookAvailability(ctx context.Context, bookID int64, available bool) error {
	const q = `
	UPDATE books
	SET available = $2
	WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, bookID, available)
	return err
}

func (t *pgTx) SetBookOwner(ctx context.Context, bookID int64, newOwnerID int64) error {
	// Transferred books stay unavailable until the new owner relists.
	const q = `
	UPDATE books
	SET owner_id  = $2,
		available = FALSE
	WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, bookID, newOwnerID)
	return err
}

func (t *pgTx) UserExists(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var ok bool
	err := t.tx.QueryRowContext(ctx, q, userID).Scan(&ok)
	return ok, err
}
