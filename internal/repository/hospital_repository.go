package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/carebridge-api/internal/domain"
)

type HospitalRepository interface {
	Create(ctx context.Context, req *domain.CreateHospitalRequest, passwordHash string) (*domain.Hospital, error)
	FindByEmail(ctx context.Context, email string) (*domain.Hospital, error)
	FindByID(ctx context.Context, id int64) (*domain.Hospital, error)
	List(ctx context.Context, city string, limit, offset int) ([]domain.Hospital, error)
	UpdateBeds(ctx context.Context, id int64, totalBeds, occupiedBeds int) (*domain.Hospital, error)
}

type hospitalRepository struct {
	pool *pgxpool.Pool
}

func NewHospitalRepository(pool *pgxpool.Pool) HospitalRepository {
	return &hospitalRepository{pool: pool}
}

const hospitalCols = `id, email, password_hash, name, address, city, contact_number,
total_beds, occupied_beds, created_at, updated_at`

func scanHospital(row pgx.Row) (*domain.Hospital, error) {
	var h domain.Hospital
	err := row.Scan(
		&h.ID, &h.Email, &h.PasswordHash, &h.Name, &h.Address, &h.City,
		&h.ContactNumber, &h.TotalBeds, &h.OccupiedBeds,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hospitalRepository) Create(ctx context.Context, req *domain.CreateHospitalRequest, passwordHash string) (*domain.Hospital, error) {
	const q = `INSERT INTO hospitals (email, password_hash, name, address, city, contact_number, total_beds, occupied_beds)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	RETURNING ` + hospitalCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	h, err := scanHospital(r.pool.QueryRow(ctx, q,
		req.Email, passwordHash, req.Name, req.Address, req.City,
		req.ContactNumber, req.TotalBeds, req.OccupiedBeds,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	return h, err
}

func (r *hospitalRepository) FindByEmail(ctx context.Context, email string) (*domain.Hospital, error) {
	const q = `SELECT ` + hospitalCols + ` FROM hospitals WHERE lower(email)=lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	h, err := scanHospital(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return h, err
}

func (r *hospitalRepository) FindByID(ctx context.Context, id int64) (*domain.Hospital, error) {
	const q = `SELECT ` + hospitalCols + ` FROM hospitals WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	h, err := scanHospital(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return h, err
}

func (r *hospitalRepository) List(ctx context.Context, city string, limit, offset int) ([]domain.Hospital, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + hospitalCols + ` FROM hospitals`
	args := []any{}
	if city != "" {
		q += ` WHERE lower(city)=lower($1) ORDER BY name LIMIT $2 OFFSET $3`
		args = append(args, city, limit, offset)
	} else {
		q += ` ORDER BY name LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hospitals []domain.Hospital
	for rows.Next() {
		var h domain.Hospital
		if err := rows.Scan(
			&h.ID, &h.Email, &h.PasswordHash, &h.Name, &h.Address, &h.City,
			&h.ContactNumber, &h.TotalBeds, &h.OccupiedBeds,
			&h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

// UpdateBeds sets the inventory in a single guarded statement; the WHERE
// clause re-checks the occupied <= total invariant server-side.
func (r *hospitalRepository) UpdateBeds(ctx context.Context, id int64, totalBeds, occupiedBeds int) (*domain.Hospital, error) {
	const q = `UPDATE hospitals
	SET total_beds=$2, occupied_beds=$3, updated_at=now()
	WHERE id=$1 AND $3 >= 0 AND $3 <= $2
	RETURNING ` + hospitalCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	h, err := scanHospital(r.pool.QueryRow(ctx, q, id, totalBeds, occupiedBeds))
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return h, err
}
