package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lfmartins/legalflow/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (b *PostgresBookingRepository) GetById(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, client_name, client_email, lawyer_email,
			scheduled_date, scheduled_time, duration_minutes, subject,
			created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking domain.Booking

	err := b.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.ClientName,
		&booking.ClientEmail,
		&booking.LawyerEmail,
		&booking.ScheduledDate,
		&booking.ScheduledTime,
		&booking.DurationMinutes,
		&booking.Subject,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	return &booking, nil
}
