package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"synergy-alloc/internal/allocator"
	"synergy-alloc/internal/syncer"
)

// RunRepository persists one allocation run: the per-patient allocation
// records, the shipments, and the synchronized canonical updates. All of
// it commits in a single transaction so a run is either fully
// synchronized or not at all.
type RunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRunRepository(db *sql.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

// SaveRun writes the run outcome. sync may be nil when synchronization
// was not requested; allocation records and shipments are stored either
// way.
func (r *RunRepository) SaveRun(
	ctx context.Context,
	runID string,
	assignment *allocator.AssignmentResult,
	distribution *allocator.DistributionResult,
	sync *syncer.SyncResult,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range assignment.Records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO allocation_records
				(run_id, patient_id, patient_name, patient_region,
				 priority_score, mews_score, assigned_hospital,
				 hospital_region, regional_match)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID, rec.PatientID, rec.PatientName, rec.PatientRegion,
			rec.PriorityScore, rec.MEWSScore, rec.AssignedHospital,
			rec.HospitalRegion, rec.RegionalMatch,
		); err != nil {
			return fmt.Errorf("failed to insert allocation record: %w", err)
		}
	}

	if distribution != nil {
		for _, shipment := range distribution.Shipments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO shipment_records
					(run_id, supplier_id, hospital, resource, amount,
					 regional_match, cost)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				runID, shipment.SupplierID, shipment.HospitalName,
				shipment.Resource, shipment.Amount,
				shipment.RegionalMatch, shipment.Cost,
			); err != nil {
				return fmt.Errorf("failed to insert shipment record: %w", err)
			}
		}
	}

	if sync != nil {
		if err := r.applySync(ctx, tx, sync); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	r.logger.Info("Allocation run persisted",
		zap.String("run_id", runID),
		zap.Int("allocations", len(assignment.Records)),
	)
	return nil
}

func (r *RunRepository) applySync(ctx context.Context, tx *sql.Tx, sync *syncer.SyncResult) error {
	for i := range sync.Patients {
		p := &sync.Patients[i]
		result, err := tx.ExecContext(ctx, `
			UPDATE patients
			SET assigned_hospital = $1, status = $2, diagnosis = $3,
			    priority_score = $4
			WHERE patient_id = $5`,
			p.AssignedHospital, p.Status, p.Diagnosis,
			p.PriorityScore, p.PatientID,
		)
		if err != nil {
			return fmt.Errorf("failed to update patient %s: %w", p.PatientID, err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("patient %s: %w", p.PatientID, ErrNotFound)
		}
	}

	for i := range sync.Hospitals {
		h := &sync.Hospitals[i]
		result, err := tx.ExecContext(ctx, `
			UPDATE hospitals
			SET current_patients = $1, beds_available = $2
			WHERE hospital_id = $3`,
			h.CurrentPatients, h.BedsAvailable, h.HospitalID,
		)
		if err != nil {
			return fmt.Errorf("failed to update hospital %s: %w", h.HospitalID, err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("hospital %s: %w", h.HospitalID, ErrNotFound)
		}
	}

	return nil
}
