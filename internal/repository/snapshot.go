package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// SnapshotRepository loads one full allocation snapshot (patients,
// hospitals, suppliers) from the canonical tables.
type SnapshotRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSnapshotRepository(db *sql.DB, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// LoadPatients returns all patients awaiting allocation. Optional
// clinical signals come back as NULLs and stay nil on the record.
func (r *SnapshotRepository) LoadPatients(ctx context.Context) ([]models.Patient, error) {
	query := `
		SELECT patient_id, name, COALESCE(region, ''),
		       triage_category, triage_rank, mews_score,
		       time_criticality_min, derived_severity,
		       COALESCE(symptoms, ''), COALESCE(diagnosis, ''),
		       arrived_at
		FROM patients
		ORDER BY patient_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var p models.Patient
		var triageCategory sql.NullString
		if err := rows.Scan(
			&p.PatientID, &p.Name, &p.Region,
			&triageCategory, &p.TriageRank, &p.MEWSScore,
			&p.TimeCriticality, &p.DerivedSeverity,
			&p.Symptoms, &p.Diagnosis,
			&p.ArrivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		if triageCategory.Valid {
			p.TriageCategory = triageCategory.String
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	r.logger.Debug("Loaded patient snapshot", zap.Int("patients", len(patients)))
	return patients, nil
}

// LoadHospitals returns all hospitals with their capacity counters.
func (r *SnapshotRepository) LoadHospitals(ctx context.Context) ([]models.Hospital, error) {
	query := `
		SELECT hospital_id, name, region,
		       beds_available, COALESCE(beds_capacity, beds_available),
		       staff_available, COALESCE(ventilators, 0),
		       COALESCE(current_patients, 0)
		FROM hospitals
		ORDER BY hospital_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hospitals: %w", err)
	}
	defer rows.Close()

	var hospitals []models.Hospital
	for rows.Next() {
		var h models.Hospital
		if err := rows.Scan(
			&h.HospitalID, &h.Name, &h.Region,
			&h.BedsAvailable, &h.BedsCapacity,
			&h.StaffAvailable, &h.Ventilators,
			&h.CurrentPatients,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hospitals: %w", err)
	}

	r.logger.Debug("Loaded hospital snapshot", zap.Int("hospitals", len(hospitals)))
	return hospitals, nil
}

// LoadSuppliers returns all suppliers. NULL resource columns mean the
// supplier does not distribute that resource type.
func (r *SnapshotRepository) LoadSuppliers(ctx context.Context) ([]models.Supplier, error) {
	query := `
		SELECT supplier_id, COALESCE(region, ''),
		       beds, staff, medical_kits
		FROM suppliers
		ORDER BY supplier_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []models.Supplier
	for rows.Next() {
		var s models.Supplier
		var beds, staff, kits sql.NullInt64
		if err := rows.Scan(&s.SupplierID, &s.Region, &beds, &staff, &kits); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		s.Available = make(map[string]int)
		if beds.Valid {
			s.Available[models.ResourceBeds] = int(beds.Int64)
		}
		if staff.Valid {
			s.Available[models.ResourceStaff] = int(staff.Int64)
		}
		if kits.Valid {
			s.Available[models.ResourceMedicalKits] = int(kits.Int64)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suppliers: %w", err)
	}

	r.logger.Debug("Loaded supplier snapshot", zap.Int("suppliers", len(suppliers)))
	return suppliers, nil
}
