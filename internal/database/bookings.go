package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"washify/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `id, name, phone, city, address, date, time_slot, packages, car, price, water_power, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b        models.Booking
		packages string
	)
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Phone,
		&b.City,
		&b.Address,
		&b.Date,
		&b.TimeSlot,
		&packages,
		&b.Car,
		&b.Price,
		&b.WaterPower,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(packages), &b.Packages); err != nil {
		return nil, fmt.Errorf("failed to decode packages of booking %s: %w", b.ID, err)
	}
	return &b, nil
}

// CreateBooking assigns id, status and creation time, then inserts the row.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if len(booking.Packages) == 0 {
		return ErrEmptyPackages
	}

	packages, err := json.Marshal(booking.Packages)
	if err != nil {
		return fmt.Errorf("failed to encode packages: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	status := booking.Status
	if status == "" {
		status = models.StatusUpcoming
	}

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, query,
		id,
		booking.Name,
		booking.Phone,
		booking.City,
		booking.Address,
		booking.Date,
		booking.TimeSlot,
		string(packages),
		booking.Car,
		booking.Price,
		booking.WaterPower,
		status,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = id
	booking.Status = status
	booking.CreatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListBookings returns every booking, newest created first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC, rowid DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// DeleteBooking removes the booking and returns it as it was before deletion.
func (db *DB) DeleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatus sets the status and returns the updated booking.
func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrBookingNotFound
	}

	booking, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return booking, nil
}

// CountByStatus is used by the readiness probe and the export summary.
func (db *DB) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ImportBooking inserts a booking that already has an id, keeping its status
// and creation time. A booking whose id is already stored is left untouched
// and reported as not created.
func (db *DB) ImportBooking(ctx context.Context, booking *models.Booking) (bool, error) {
	if booking.ID == "" {
		return false, errors.New("imported booking has no id")
	}
	if len(booking.Packages) == 0 {
		return false, ErrEmptyPackages
	}

	packages, err := json.Marshal(booking.Packages)
	if err != nil {
		return false, fmt.Errorf("failed to encode packages: %w", err)
	}

	status := booking.Status
	if !models.IsValidStatus(status) {
		status = models.StatusUpcoming
	}
	createdAt := booking.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.Name,
		booking.Phone,
		booking.City,
		booking.Address,
		booking.Date,
		booking.TimeSlot,
		string(packages),
		booking.Car,
		booking.Price,
		booking.WaterPower,
		status,
		createdAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to import booking %s: %w", booking.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}
