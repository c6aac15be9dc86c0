package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/carebridge-api/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, userID int64, req *domain.BookAppointmentRequest) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.UserAppointment, error)
	ListForHospital(ctx context.Context, hospitalID int64, status *domain.AppointmentStatus, search string, limit, offset int) ([]domain.HospitalAppointment, error)
	CountForUser(ctx context.Context, userID int64) (domain.AppointmentCounts, error)
	ConfirmPending(ctx context.Context, id int64) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64) (*domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentCols = `id, user_id, hospital_id, date, time, status, bed_reserved, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID, &a.UserID, &a.HospitalID, &a.Date, &a.Time,
		&a.Status, &a.BedReserved, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, userID int64, req *domain.BookAppointmentRequest) (*domain.Appointment, error) {
	const q = `INSERT INTO appointments (user_id, hospital_id, date, time, status, bed_reserved)
	VALUES ($1,$2,$3,$4,'pending',false)
	RETURNING ` + appointmentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAppointment(r.pool.QueryRow(ctx, q, userID, req.HospitalID, req.Date, req.Time))
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	const q = `SELECT ` + appointmentCols + ` FROM appointments WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *appointmentRepository) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.UserAppointment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT a.id, a.user_id, a.hospital_id, a.date, a.time, a.status, a.bed_reserved,
		a.created_at, a.updated_at, h.name, h.address, h.city
	FROM appointments a
	JOIN hospitals h ON h.id = a.hospital_id
	WHERE a.user_id=$1
	ORDER BY a.created_at DESC LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []domain.UserAppointment
	for rows.Next() {
		var a domain.UserAppointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.HospitalID, &a.Date, &a.Time,
			&a.Status, &a.BedReserved, &a.CreatedAt, &a.UpdatedAt,
			&a.HospitalName, &a.HospitalAddress, &a.HospitalCity,
		); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *appointmentRepository) ListForHospital(ctx context.Context, hospitalID int64, status *domain.AppointmentStatus, search string, limit, offset int) ([]domain.HospitalAppointment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT a.id, a.user_id, a.hospital_id, a.date, a.time, a.status, a.bed_reserved,
		a.created_at, a.updated_at, u.name, u.contact_number
	FROM appointments a
	JOIN users u ON u.id = a.user_id
	WHERE a.hospital_id=$1`
	args := []any{hospitalID}

	if status != nil {
		args = append(args, *status)
		q += ` AND a.status=$2`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		q += ` AND u.name ILIKE $` + strconv.Itoa(len(args))
	}
	args = append(args, limit, offset)
	q += ` ORDER BY a.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []domain.HospitalAppointment
	for rows.Next() {
		var a domain.HospitalAppointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.HospitalID, &a.Date, &a.Time,
			&a.Status, &a.BedReserved, &a.CreatedAt, &a.UpdatedAt,
			&a.PatientName, &a.PatientContact,
		); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *appointmentRepository) CountForUser(ctx context.Context, userID int64) (domain.AppointmentCounts, error) {
	const q = `SELECT
		count(*),
		count(*) FILTER (WHERE status='pending'),
		count(*) FILTER (WHERE status='confirmed'),
		count(*) FILTER (WHERE status='cancelled')
	FROM appointments WHERE user_id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.AppointmentCounts
	err := r.pool.QueryRow(ctx, q, userID).Scan(&c.Total, &c.Pending, &c.Confirmed, &c.Cancelled)
	return c, err
}

// ConfirmPending flips a pending appointment to confirmed and reserves one
// bed at the owning hospital, in a single transaction. The bed update is a
// guarded single statement so concurrent confirms can never oversubscribe
// the inventory.
func (r *appointmentRepository) ConfirmPending(ctx context.Context, id int64) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	a, err := scanAppointment(tx.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id=$1 FOR UPDATE`, id))
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !a.CanConfirm() {
		return nil, domain.ErrNotPending
	}

	res, err := tx.Exec(ctx,
		`UPDATE hospitals SET occupied_beds = occupied_beds + 1, updated_at = now()
		WHERE id=$1 AND occupied_beds < total_beds`, a.HospitalID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, domain.ErrNoBedsAvailable
	}

	a, err = scanAppointment(tx.QueryRow(ctx,
		`UPDATE appointments SET status='confirmed', bed_reserved=true, updated_at=now()
		WHERE id=$1 RETURNING `+appointmentCols, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel flips a pending or confirmed appointment to cancelled, releasing
// the reserved bed in the same transaction when one was taken. The release
// is best-effort: if the hospital already set occupied_beds below the
// reservation count through a direct inventory update, the count floors at
// zero and the cancellation still goes through.
func (r *appointmentRepository) Cancel(ctx context.Context, id int64) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	a, err := scanAppointment(tx.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id=$1 FOR UPDATE`, id))
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !a.CanCancel() {
		return nil, domain.ErrAlreadyCancelled
	}

	if a.BedReserved {
		_, err := tx.Exec(ctx,
			`UPDATE hospitals SET occupied_beds = GREATEST(occupied_beds - 1, 0), updated_at = now()
			WHERE id=$1`, a.HospitalID)
		if err != nil {
			return nil, err
		}
	}

	a, err = scanAppointment(tx.QueryRow(ctx,
		`UPDATE appointments SET status='cancelled', bed_reserved=false, updated_at=now()
		WHERE id=$1 RETURNING `+appointmentCols, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

