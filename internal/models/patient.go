package models

import (
	"time"
)

// Triage category labels accepted on intake (mapped to ranks 1-5).
const (
	TriageImmediate  = "Immediate"
	TriageEmergency  = "Emergency"
	TriageUrgent     = "Urgent"
	TriageSemiUrgent = "Semi-urgent"
	TriageNonUrgent  = "Non-urgent"
	TriageMinor      = "Minor"
)

// DefaultTriageRank is used when the triage category is missing or
// unrecognized (middle priority).
const DefaultTriageRank = 3

// CriticalSeverity is the MEWS threshold above which a patient counts as
// critical for ventilator gating and the high-severity report count.
const CriticalSeverity = 5.0

// DiagnosisPending marks a diagnosis that has not been entered yet and
// may be back-filled during synchronization.
const DiagnosisPending = "Pending"

// Patient is the canonical patient record. Optional clinical signals are
// pointers: nil means the intake row did not carry the field. The scorer
// writes PriorityScore and TriageRank exactly once; the syncer writes
// AssignedHospital, Status and the diagnosis backfill.
type Patient struct {
	PatientID string `json:"patient_id" db:"patient_id"`
	Name      string `json:"name" db:"name"`
	Region    string `json:"region" db:"region"`

	TriageCategory  string   `json:"triage_category,omitempty" db:"triage_category"`
	TriageRank      *int     `json:"triage_rank,omitempty" db:"triage_rank"`
	MEWSScore       *float64 `json:"mews_score,omitempty" db:"mews_score"`
	TimeCriticality *float64 `json:"time_criticality_min,omitempty" db:"time_criticality_min"`
	DerivedSeverity *float64 `json:"derived_severity,omitempty" db:"derived_severity"`

	Symptoms  string     `json:"symptoms,omitempty" db:"symptoms"`
	Diagnosis string     `json:"diagnosis,omitempty" db:"diagnosis"`
	ArrivedAt *time.Time `json:"arrived_at,omitempty" db:"arrived_at"`

	PriorityScore float64 `json:"priority_score" db:"priority_score"`

	AssignedHospital string `json:"assigned_hospital,omitempty" db:"assigned_hospital"`
	Status           string `json:"status,omitempty" db:"status"`
}

// Critical reports whether the patient falls under the ventilator
// constraint of the assigner.
func (p *Patient) Critical() bool {
	return p.MEWSScore != nil && *p.MEWSScore >= CriticalSeverity
}
