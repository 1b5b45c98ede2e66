package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lfmartins/legalflow/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id,
			booking_id,
			status,
			amount,
			billing_type
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.ID,
		payment.BookingID,
		payment.Status,
		payment.Amount,
		payment.BillingType,
	).Scan(&payment.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domain.ErrPaymentAlreadyExists
	}

	return err
}

func (p *PostgresPaymentRepository) GetById(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, booking_id, status, amount, billing_type,
			meeting_event_id, meeting_join_link, created_at, updated_at
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Status,
		&payment.Amount,
		&payment.BillingType,
		&payment.MeetingEventID,
		&payment.MeetingJoinLink,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}

// UpdateStatus is the keyed write the reconciliation pipeline relies on: no
// pre-read, last-committed-wins at the row. The boolean result distinguishes
// a committed transition from a speculative update against a row that does
// not exist yet.
func (p *PostgresPaymentRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.PaymentStatus) (bool, error) {

	query := `
		UPDATE payments
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, status, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// SetMeeting writes the provisioned meeting reference at most once. A second
// call is a no-op rather than an overwrite.
func (p *PostgresPaymentRepository) SetMeeting(ctx context.Context, id, eventID, joinLink string) error {
	query := `
		UPDATE payments
		SET meeting_event_id = $1, meeting_join_link = $2, updated_at = now()
		WHERE id = $3 AND meeting_event_id IS NULL
	`

	tag, err := p.db.Exec(ctx, query, eventID, joinLink, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrMeetingAlreadyCreated
	}

	return nil
}
