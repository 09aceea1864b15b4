package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-timeline/internal/domain/prescriptions"
)

type PrescriptionsRepo struct {
	db *sql.DB
}

func NewPrescriptionsRepo(db *sql.DB) *PrescriptionsRepo {
	return &PrescriptionsRepo{db: db}
}

const selectPrescription = `
	SELECT
		p.id, p.patient_id,
		p.medication_id, m.name,
		p.start_date,
		p.facility_id, f.name, f.external_id,
		p.notes, p.contributor,
		p.created_at, p.updated_at
	FROM prescriptions p
	JOIN medications m ON m.id = p.medication_id
	LEFT JOIN facilities f ON f.id = p.facility_id
`

// Create inserta la prescripción y sus tramos en una transacción.
func (r *PrescriptionsRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var facilityID sql.NullString
	if p.Facility != nil {
		facilityID = nullString(p.Facility.ID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO prescriptions (
			id, patient_id, medication_id,
			start_date, facility_id,
			notes, contributor,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.PatientID,
		p.Medication.ID,
		toNullDate(p.StartDate),
		facilityID,
		p.Notes,
		p.Contributor,
		p.CreatedAt,
		p.UpdatedAt,
	); err != nil {
		return err
	}

	for _, d := range p.Dosages {
		if err := insertDosage(ctx, tx, d); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PrescriptionsRepo) Update(ctx context.Context, p prescriptions.Prescription) error {
	var facilityID sql.NullString
	if p.Facility != nil {
		facilityID = nullString(p.Facility.ID)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE prescriptions
		SET
			start_date = $2,
			facility_id = $3,
			notes = $4,
			contributor = $5,
			updated_at = $6
		WHERE id = $1
	`,
		p.ID,
		toNullDate(p.StartDate),
		facilityID,
		p.Notes,
		p.Contributor,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prescriptions.ErrNotFound
	}
	return nil
}

func (r *PrescriptionsRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return prescriptions.Prescription{}, prescriptions.ErrNotFound
	}

	p, err := scanPrescription(r.db.QueryRowContext(ctx, selectPrescription+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return prescriptions.Prescription{}, prescriptions.ErrNotFound
		}
		return prescriptions.Prescription{}, err
	}

	items := []prescriptions.Prescription{p}
	if err := r.loadDosages(ctx, items); err != nil {
		return prescriptions.Prescription{}, err
	}
	return items[0], nil
}

func (r *PrescriptionsRepo) ListByPatient(ctx context.Context, patientID string, filter prescriptions.ListFilter) ([]prescriptions.Prescription, error) {
	query := selectPrescription + ` WHERE p.patient_id = $1`
	if filter.Dated != nil {
		if *filter.Dated {
			query += ` AND p.start_date IS NOT NULL`
		} else {
			query += ` AND p.start_date IS NULL`
		}
	}
	query += ` ORDER BY p.seq ASC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prescriptions.Prescription, 0)
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadDosages(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PrescriptionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prescriptions.ErrNotFound
	}
	return nil
}

func (r *PrescriptionsRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM prescriptions WHERE patient_id = $1`, patientID)
	return err
}

func (r *PrescriptionsRepo) CountByMedication(ctx context.Context, medicationID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM prescriptions WHERE medication_id = $1`, medicationID).Scan(&n)
	return n, err
}

func (r *PrescriptionsRepo) DetachFacility(ctx context.Context, facilityID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE prescriptions SET facility_id = NULL WHERE facility_id = $1`, facilityID)
	return err
}

func (r *PrescriptionsRepo) AddDosage(ctx context.Context, d prescriptions.DosageSchedule) error {
	err := insertDosage(ctx, r.db, d)
	if isForeignKeyViolation(err) {
		return prescriptions.ErrNotFound
	}
	return err
}

func (r *PrescriptionsRepo) UpdateDosage(ctx context.Context, d prescriptions.DosageSchedule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dosage_schedules
		SET dose = $3, frequency = $4, route = $5, duration_seconds = $6
		WHERE id = $1 AND prescription_id = $2
	`,
		d.ID,
		d.PrescriptionID,
		d.Dose,
		d.Frequency,
		string(d.Route),
		int64(d.Duration/time.Second),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prescriptions.ErrDosageNotFound
	}
	return nil
}

func (r *PrescriptionsRepo) DeleteDosage(ctx context.Context, prescriptionID, dosageID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM dosage_schedules
		WHERE id = $1 AND prescription_id = $2
	`, dosageID, prescriptionID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prescriptions.ErrDosageNotFound
	}
	return nil
}

// loadDosages trae los tramos de todas las prescripciones en una sola query.
func (r *PrescriptionsRepo) loadDosages(ctx context.Context, items []prescriptions.Prescription) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(items))
	index := make(map[string]int, len(items))
	for i, p := range items {
		ids = append(ids, p.ID)
		index[p.ID] = i
		items[i].Dosages = make([]prescriptions.DosageSchedule, 0)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prescription_id, sequence, dose, frequency, route, duration_seconds, created_at
		FROM dosage_schedules
		WHERE prescription_id = ANY($1)
		ORDER BY prescription_id, sequence ASC, created_at ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load dosages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d prescriptions.DosageSchedule
		var route string
		var seconds int64
		if err := rows.Scan(&d.ID, &d.PrescriptionID, &d.Sequence, &d.Dose, &d.Frequency, &route, &seconds, &d.CreatedAt); err != nil {
			return err
		}
		d.Route = prescriptions.Route(route)
		d.Duration = time.Duration(seconds) * time.Second

		if i, ok := index[d.PrescriptionID]; ok {
			items[i].Dosages = append(items[i].Dosages, d)
		}
	}
	return rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDosage(ctx context.Context, db execer, d prescriptions.DosageSchedule) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO dosage_schedules (
			id, prescription_id, sequence,
			dose, frequency, route,
			duration_seconds, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		d.ID,
		d.PrescriptionID,
		d.Sequence,
		d.Dose,
		d.Frequency,
		string(d.Route),
		int64(d.Duration/time.Second),
		d.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrescription(s rowScanner) (prescriptions.Prescription, error) {
	var p prescriptions.Prescription
	var start sql.NullTime
	var facID, facName, facExt sql.NullString

	if err := s.Scan(
		&p.ID,
		&p.PatientID,
		&p.Medication.ID,
		&p.Medication.Name,
		&start,
		&facID,
		&facName,
		&facExt,
		&p.Notes,
		&p.Contributor,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return prescriptions.Prescription{}, err
	}

	p.StartDate = fromNullDate(start)
	if facID.Valid {
		p.Facility = &prescriptions.FacilityRef{
			ID:         facID.String,
			Name:       facName.String,
			ExternalID: facExt.String,
		}
	}
	return p, nil
}
