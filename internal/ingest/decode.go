package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// Loader decodes tabular input records into the canonical schemas,
// applying the documented defaults for optional and unparsable fields.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// decodePatients turns a patient table into records. Rows without a
// patient id are skipped with a warning; every other shape problem is
// resolved by defaulting.
func (l *Loader) decodePatients(t *table) ([]models.Patient, error) {
	if err := t.requireColumns([]string{"Patient_ID", "Patient ID"}); err != nil {
		return nil, err
	}

	patients := make([]models.Patient, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2 // 1-based, after header
		id := t.get(row, "Patient_ID", "Patient ID")
		if id == "" {
			l.logger.Warn("Skipping patient row without id", zap.Int("line", line))
			continue
		}

		p := models.Patient{
			PatientID: id,
			Name:      t.get(row, "Patient_Name", "Patient Name"),
			Region:    t.get(row, "Region"),
			Symptoms:  t.get(row, "Symptoms", "Chief Complaint"),
			Diagnosis: t.get(row, "Diagnosis", "Preliminary Diagnosis"),
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Patient_%d", i)
		}

		if raw := t.get(row, "Triage Priority", "Triage_Priority"); raw != "" {
			p.TriageCategory = raw
			p.TriageRank = parseTriage(raw)
		}
		if raw := t.get(row, "MEWS_Score"); raw != "" {
			v := parseFloatOr(l.logger, raw, DefaultMEWSScore, "MEWS_Score", line)
			p.MEWSScore = &v
		}
		if raw := t.get(row, "Time_Criticality_Min"); raw != "" {
			v := parseFloatOr(l.logger, raw, DefaultTimeCriticality, "Time_Criticality_Min", line)
			p.TimeCriticality = &v
		}
		if raw := t.get(row, "Derived_Severity"); raw != "" {
			if v := parseFloatOr(l.logger, raw, -1, "Derived_Severity", line); v >= 0 {
				p.DerivedSeverity = &v
			}
		}
		if raw := t.get(row, "Time of Arrival", "Arrival_Time"); raw != "" {
			p.ArrivedAt = parseArrival(l.logger, raw, line)
		}

		patients = append(patients, p)
	}
	return patients, nil
}

func (l *Loader) decodeHospitals(t *table) ([]models.Hospital, error) {
	if err := t.requireColumns(
		[]string{"Hospital_ID"},
		[]string{"Region"},
		[]string{"Beds_Available"},
		[]string{"Staff_Available"},
	); err != nil {
		return nil, err
	}

	hospitals := make([]models.Hospital, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		id := t.get(row, "Hospital_ID")
		if id == "" {
			l.logger.Warn("Skipping hospital row without id", zap.Int("line", line))
			continue
		}

		h := models.Hospital{
			HospitalID:     id,
			Name:           t.get(row, "Name"),
			Region:         t.get(row, "Region"),
			BedsAvailable:  parseIntOr(l.logger, t.get(row, "Beds_Available"), 0, "Beds_Available", line),
			StaffAvailable: parseFloatOr(l.logger, t.get(row, "Staff_Available"), 0, "Staff_Available", line),
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("Hospital_%d", i)
		}
		if raw := t.get(row, "Ventilators"); raw != "" {
			h.Ventilators = parseIntOr(l.logger, raw, 0, "Ventilators", line)
		}
		if raw := t.get(row, "Beds_Capacity"); raw != "" {
			h.BedsCapacity = parseIntOr(l.logger, raw, h.BedsAvailable, "Beds_Capacity", line)
		} else {
			h.BedsCapacity = h.BedsAvailable
		}
		if raw := t.get(row, "Current_Patients"); raw != "" {
			h.CurrentPatients = parseIntOr(l.logger, raw, 0, "Current_Patients", line)
		}

		hospitals = append(hospitals, h)
	}
	return hospitals, nil
}

func (l *Loader) decodeSuppliers(t *table) ([]models.Supplier, error) {
	suppliers := make([]models.Supplier, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		s := models.Supplier{
			SupplierID: t.get(row, "Supplier_ID"),
			Region:     t.get(row, "Region"),
			Available:  make(map[string]int),
		}
		if s.SupplierID == "" {
			s.SupplierID = fmt.Sprintf("Supplier_%d", i)
		}

		// Only resource columns present in the header are distributable.
		for _, resource := range models.ResourceTypes {
			if !t.has(resource) {
				continue
			}
			if raw := t.get(row, resource); raw != "" {
				s.Available[resource] = parseIntOr(l.logger, raw, 0, resource, line)
			} else {
				s.Available[resource] = 0
			}
		}

		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}
