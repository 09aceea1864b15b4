package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"medication-timeline/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (id, name, created_at)
		VALUES ($1,$2,$3)
	`, m.ID, m.Name, m.CreatedAt)
	if isUniqueViolation(err) {
		return medications.ErrConflict
	}
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `UPDATE medications SET name = $2 WHERE id = $1`, m.ID, m.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return medications.ErrConflict
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM medications WHERE id = $1`, strings.TrimSpace(id))
}

func (r *MedicationsRepo) GetByName(ctx context.Context, name string) (medications.Medication, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM medications WHERE lower(name) = lower($1)`, strings.TrimSpace(name))
}

func (r *MedicationsRepo) getOne(ctx context.Context, query, arg string) (medications.Medication, error) {
	if arg == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	var m medications.Medication
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&m.ID, &m.Name, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) List(ctx context.Context, query string) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM medications
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		var m medications.Medication
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}
