package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popcornpalace/booking-api/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Create appends a booking. No seat exclusivity is enforced here: two bookings
// may reference the same seat.
func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tickets, err := json.Marshal(booking.Tickets)
	if err != nil {
		return fmt.Errorf("failed to encode tickets: %w", err)
	}

	query := `
		INSERT INTO bookings (id, screening_id, user_id, tickets, seats, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()))
		RETURNING created_at
	`

	err = p.db.QueryRow(
		ctx,
		query,
		booking.ID,
		booking.ScreeningID,
		booking.UserID,
		tickets,
		booking.Seats,
		booking.PaymentStatus,
		nullableTime(booking.CreatedAt),
	).Scan(&booking.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT id, screening_id, user_id, tickets, seats, payment_status,
			checkout_session_id, created_at, paid_at
		FROM bookings
		WHERE id = $1
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.ScreeningID,
		&booking.UserID,
		&booking.Tickets,
		&booking.Seats,
		&booking.PaymentStatus,
		&booking.CheckoutSessionID,
		&booking.CreatedAt,
		&booking.PaidAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &booking, nil
}

// GetSeatClaimsByScreeningId returns every booking of the screening regardless
// of payment status, oldest first.
func (p *PostgresBookingRepository) GetSeatClaimsByScreeningId(
	ctx context.Context,
	screeningID uuid.UUID) ([]domain.SeatClaim, error) {

	query := `
		SELECT seats, payment_status, created_at
		FROM bookings
		WHERE screening_id = $1
		ORDER BY created_at, id
	`

	rows, err := p.db.Query(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]domain.SeatClaim, 0)

	for rows.Next() {
		var claim domain.SeatClaim

		err = rows.Scan(&claim.Seats, &claim.PaymentStatus, &claim.CreatedAt)
		if err != nil {
			return nil, err
		}

		claims = append(claims, claim)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return claims, nil
}

func (p *PostgresBookingRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, checkoutSessionID string) error {
	query := `UPDATE bookings SET checkout_session_id = $2 WHERE id = $1`

	tag, err := p.db.Exec(ctx, query, id, checkoutSessionID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// MarkPaid flips the booking to paid. It reports false when the booking was
// already paid.
func (p *PostgresBookingRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	var transitioned bool

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET payment_status = TRUE, paid_at = NOW()
			WHERE id = $1 AND NOT payment_status
		`

		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 1 {
			transitioned = true
			return nil
		}

		var exists bool

		err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return err
		}

		if !exists {
			return domain.ErrRecordNotFound
		}

		return nil
	})

	return transitioned, err
}

func (p *PostgresBookingRepository) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			b.screening_id,
			s.movie->>'title',
			COALESCE(s.movie->>'poster', ''),
			s.date,
			b.seats,
			b.payment_status,
			b.created_at
		FROM bookings b
		JOIN screenings s ON b.screening_id = s.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var b domain.BookingSummary

		err := rows.Scan(
			&totalRecords,
			&b.ID,
			&b.ScreeningID,
			&b.MovieTitle,
			&b.MoviePoster,
			&b.ScreeningDate,
			&b.Seats,
			&b.PaymentStatus,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
