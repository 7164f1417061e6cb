package models

// Hospital is the canonical hospital record. BedsAvailable never goes
// negative: the syncer clamps it at zero after deduction.
type Hospital struct {
	HospitalID      string  `json:"hospital_id" db:"hospital_id"`
	Name            string  `json:"name" db:"name"`
	Region          string  `json:"region" db:"region"`
	BedsAvailable   int     `json:"beds_available" db:"beds_available"`
	BedsCapacity    int     `json:"beds_capacity" db:"beds_capacity"`
	StaffAvailable  float64 `json:"staff_available" db:"staff_available"`
	Ventilators     int     `json:"ventilators" db:"ventilators"`
	CurrentPatients int     `json:"current_patients" db:"current_patients"`
}

// EffectiveBeds is the usable bed count for one assignment run.
func (h *Hospital) EffectiveBeds() int {
	if h.BedsAvailable < 0 {
		return 0
	}
	return h.BedsAvailable
}

// StaffPatientCap converts staff headcount into a patient cap under the
// one-staff-per-two-patients model.
func (h *Hospital) StaffPatientCap() int {
	if h.StaffAvailable <= 0 {
		return 0
	}
	return int(h.StaffAvailable * 2)
}
