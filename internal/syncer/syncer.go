package syncer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"synergy-alloc/internal/allocator"
	"synergy-alloc/internal/models"
)

// Patient status labels derived during synchronization.
const (
	StatusCritical   = "Critical"
	StatusUrgent     = "Urgent"
	StatusSemiUrgent = "Semi-Urgent"
	StatusStable     = "Stable"
	StatusRoutine    = "Routine"
	StatusUnknown    = "Unknown"
)

// SymptomsNotRecorded fills the export record when intake carried no
// symptoms or chief complaint.
const SymptomsNotRecorded = "Not recorded"

// SyncResult carries the updated canonical snapshots and the external
// per-patient records. Inputs are never mutated: the whole batch
// succeeds together or the run stays not-yet-synchronized.
type SyncResult struct {
	Patients  []models.Patient
	Hospitals []models.Hospital
	Exports   []models.PatientExport
}

// Syncer folds an assignment back into the canonical patient and
// hospital records. It is the only component that mutates canonical
// state, and it does so on snapshots.
type Syncer struct {
	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Syncer {
	return &Syncer{logger: logger, now: time.Now}
}

// DeriveStatus grades a patient off the severity score when present,
// else the triage rank, else Unknown.
func DeriveStatus(mewsScore *float64, triageRank *int) string {
	if mewsScore != nil {
		switch {
		case *mewsScore >= 7:
			return StatusCritical
		case *mewsScore >= 5:
			return StatusUrgent
		case *mewsScore >= 3:
			return StatusSemiUrgent
		default:
			return StatusStable
		}
	}
	if triageRank != nil {
		switch *triageRank {
		case 1:
			return StatusCritical
		case 2:
			return StatusUrgent
		case 3:
			return StatusSemiUrgent
		default:
			return StatusRoutine
		}
	}
	return StatusUnknown
}

// Apply folds the allocation into copies of the canonical records and
// builds the export records, one per allocation record in order.
// An allocation referencing an unknown patient or hospital aborts the
// whole batch.
func (s *Syncer) Apply(patients []models.Patient, hospitals []models.Hospital, assignment *allocator.AssignmentResult) (*SyncResult, error) {
	result := &SyncResult{
		Patients:  append([]models.Patient(nil), patients...),
		Hospitals: append([]models.Hospital(nil), hospitals...),
		Exports:   make([]models.PatientExport, 0, len(assignment.Records)),
	}

	patientIdx := make(map[string]int, len(result.Patients))
	for i := range result.Patients {
		patientIdx[result.Patients[i].PatientID] = i
	}
	hospitalIdx := make(map[string]int, len(result.Hospitals))
	for i := range result.Hospitals {
		hospitalIdx[result.Hospitals[i].Name] = i
	}

	for _, rec := range assignment.Records {
		i, ok := patientIdx[rec.PatientID]
		if !ok {
			return nil, fmt.Errorf("allocation references unknown patient %q", rec.PatientID)
		}
		if rec.Assigned() {
			if _, ok := hospitalIdx[rec.AssignedHospital]; !ok {
				return nil, fmt.Errorf("allocation references unknown hospital %q", rec.AssignedHospital)
			}
		}

		p := &result.Patients[i]
		p.AssignedHospital = rec.AssignedHospital
		p.Status = DeriveStatus(p.MEWSScore, p.TriageRank)

		diagnosis := p.Diagnosis
		if diagnosis == "" {
			diagnosis = models.DiagnosisPending
		}
		// Backfill only: an existing diagnosis is never overwritten.
		if p.Diagnosis == "" || p.Diagnosis == models.DiagnosisPending {
			p.Diagnosis = diagnosis
		}

		symptoms := p.Symptoms
		if symptoms == "" {
			symptoms = SymptomsNotRecorded
		}

		wait := models.WaitTime{}
		if p.ArrivedAt != nil {
			wait.Known = true
			wait.Minutes = int(s.now().Sub(*p.ArrivedAt).Minutes())
		}

		result.Exports = append(result.Exports, models.PatientExport{
			ID:               p.PatientID,
			Name:             p.Name,
			Symptoms:         symptoms,
			WaitTime:         wait,
			AdmissionTime:    models.FormatAdmission(p.ArrivedAt),
			Diagnosis:        diagnosis,
			Status:           p.Status,
			AssignedHospital: rec.AssignedHospital,
			MEWSScore:        p.MEWSScore,
			TriagePriority:   p.TriageRank,
		})
	}

	for name, count := range assignment.AssignedCounts {
		i, ok := hospitalIdx[name]
		if !ok {
			return nil, fmt.Errorf("assignment count references unknown hospital %q", name)
		}
		h := &result.Hospitals[i]
		h.CurrentPatients += count
		h.BedsAvailable -= count
		if h.BedsAvailable < 0 {
			h.BedsAvailable = 0
		}
	}

	s.logger.Info("Synchronized allocation into canonical records",
		zap.Int("patients", len(result.Exports)),
		zap.Int("hospitals_updated", len(assignment.AssignedCounts)),
	)
	return result, nil
}
