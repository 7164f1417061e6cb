package models

import (
	"encoding/json"
	"time"
)

// HospitalUnassigned is the sentinel hospital value for patients the
// assigner could not place.
const HospitalUnassigned = "Unassigned"

// AllocationRecord is the per-patient outcome of one assignment run.
// Immutable after creation within a run.
type AllocationRecord struct {
	PatientID        string   `json:"patient_id" db:"patient_id"`
	PatientName      string   `json:"patient_name" db:"patient_name"`
	PatientRegion    string   `json:"patient_region" db:"patient_region"`
	PriorityScore    float64  `json:"priority_score" db:"priority_score"`
	MEWSScore        *float64 `json:"mews_score,omitempty" db:"mews_score"`
	AssignedHospital string   `json:"assigned_hospital" db:"assigned_hospital"`
	HospitalRegion   *string  `json:"hospital_region" db:"hospital_region"`
	RegionalMatch    bool     `json:"regional_match" db:"regional_match"`
}

// Assigned reports whether the patient was placed at a hospital.
func (r *AllocationRecord) Assigned() bool {
	return r.AssignedHospital != "" && r.AssignedHospital != HospitalUnassigned
}

// ShipmentRecord is one positive-quantity shipment of a resource type
// from a supplier to a hospital. Zero-amount combinations are never
// recorded.
type ShipmentRecord struct {
	SupplierID    string `json:"supplier_id" db:"supplier_id"`
	HospitalName  string `json:"hospital" db:"hospital"`
	Resource      string `json:"resource" db:"resource"`
	Amount        int    `json:"amount" db:"amount"`
	RegionalMatch bool   `json:"regional_match" db:"regional_match"`
	Cost          int    `json:"cost" db:"cost"`
}

// Shortfall records demand the distributor could not cover from the
// available supplier capacity.
type Shortfall struct {
	HospitalName string `json:"hospital"`
	Resource     string `json:"resource"`
	Missing      int    `json:"missing"`
}

// WaitTime carries elapsed whole minutes since arrival. An absent
// arrival timestamp renders as the string "Unknown", never a fabricated
// zero.
type WaitTime struct {
	Minutes int
	Known   bool
}

// MarshalJSON renders the minute count, or "Unknown" when the arrival
// timestamp was missing.
func (w WaitTime) MarshalJSON() ([]byte, error) {
	if !w.Known {
		return json.Marshal("Unknown")
	}
	return json.Marshal(w.Minutes)
}

// PatientExport is the externally consumed per-patient record emitted by
// the state synchronizer.
type PatientExport struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Symptoms         string   `json:"symptoms"`
	WaitTime         WaitTime `json:"waittime"`
	AdmissionTime    string   `json:"admission_time"`
	Diagnosis        string   `json:"diagnosis"`
	Status           string   `json:"status"`
	AssignedHospital string   `json:"assigned_hospital"`
	MEWSScore        *float64 `json:"mews_score"`
	TriagePriority   *int     `json:"triage_priority"`
}

// AdmissionUnknown is the admission_time value when no arrival timestamp
// exists.
const AdmissionUnknown = "Unknown"

// FormatAdmission renders an arrival timestamp for the export record.
func FormatAdmission(t *time.Time) string {
	if t == nil {
		return AdmissionUnknown
	}
	return t.Format(time.RFC3339)
}
