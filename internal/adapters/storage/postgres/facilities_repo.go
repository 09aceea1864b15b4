package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"medication-timeline/internal/domain/facilities"
)

type FacilitiesRepo struct {
	db *sql.DB
}

func NewFacilitiesRepo(db *sql.DB) *FacilitiesRepo {
	return &FacilitiesRepo{db: db}
}

func (r *FacilitiesRepo) Create(ctx context.Context, f facilities.Facility) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO facilities (id, name, external_id, created_at)
		VALUES ($1,$2,$3,$4)
	`, f.ID, f.Name, nullString(f.ExternalID), f.CreatedAt)
	if isUniqueViolation(err) {
		return facilities.ErrConflict
	}
	return err
}

func (r *FacilitiesRepo) Update(ctx context.Context, f facilities.Facility) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE facilities
		SET name = $2, external_id = $3
		WHERE id = $1
	`, f.ID, f.Name, nullString(f.ExternalID))
	if err != nil {
		if isUniqueViolation(err) {
			return facilities.ErrConflict
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return facilities.ErrNotFound
	}
	return nil
}

func (r *FacilitiesRepo) GetByID(ctx context.Context, id string) (facilities.Facility, error) {
	return r.getOne(ctx, `SELECT id, name, external_id, created_at FROM facilities WHERE id = $1`, strings.TrimSpace(id))
}

func (r *FacilitiesRepo) GetByExternalID(ctx context.Context, externalID string) (facilities.Facility, error) {
	return r.getOne(ctx, `SELECT id, name, external_id, created_at FROM facilities WHERE external_id = $1`, strings.TrimSpace(externalID))
}

func (r *FacilitiesRepo) getOne(ctx context.Context, query, arg string) (facilities.Facility, error) {
	if arg == "" {
		return facilities.Facility{}, facilities.ErrNotFound
	}

	var f facilities.Facility
	var ext sql.NullString
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&f.ID, &f.Name, &ext, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return facilities.Facility{}, facilities.ErrNotFound
		}
		return facilities.Facility{}, err
	}
	f.ExternalID = ext.String
	return f, nil
}

func (r *FacilitiesRepo) List(ctx context.Context) ([]facilities.Facility, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, external_id, created_at
		FROM facilities
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]facilities.Facility, 0)
	for rows.Next() {
		var f facilities.Facility
		var ext sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &ext, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.ExternalID = ext.String
		out = append(out, f)
	}
	return out, rows.Err()
}

// Delete: las prescripciones quedan con facility_id NULL (ON DELETE SET NULL).
func (r *FacilitiesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return facilities.ErrNotFound
	}
	return nil
}
