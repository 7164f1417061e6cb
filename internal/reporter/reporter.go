package reporter

import (
	"synergy-alloc/internal/allocator"
	"synergy-alloc/internal/models"
)

// PatientSummary aggregates the assignment outcome across one run.
type PatientSummary struct {
	TotalPatients        int     `json:"total_patients"`
	AssignedPatients     int     `json:"assigned_patients"`
	UnassignedPatients   int     `json:"unassigned_patients"`
	RegionalMatches      int     `json:"regional_matches"`
	AveragePriorityScore float64 `json:"average_priority_score"`
	HighSeverityPatients int     `json:"high_severity_patients"`
}

// HospitalUtilization is one hospital's capacity versus occupancy after
// the run's assignments are counted in.
type HospitalUtilization struct {
	Capacity           int     `json:"capacity"`
	CurrentPatients    int     `json:"current_patients"`
	NewlyAssigned      int     `json:"newly_assigned"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// Report is the aggregate view over both optimizer outputs. It is a
// pure function of its inputs: nothing here mutates canonical records.
type Report struct {
	PatientSummary      PatientSummary                 `json:"patient_summary"`
	HospitalUtilization map[string]HospitalUtilization `json:"hospital_utilization"`
	Shipments           int                            `json:"shipments"`
	ShipmentUnits       int                            `json:"shipment_units"`
	TransportCost       int                            `json:"transport_cost"`
	Shortfalls          []models.Shortfall             `json:"shortfalls,omitempty"`
}

// Build aggregates the assignment and distribution results against the
// hospital capacity fields.
func Build(assignment *allocator.AssignmentResult, distribution *allocator.DistributionResult, hospitals []models.Hospital) *Report {
	report := &Report{
		HospitalUtilization: make(map[string]HospitalUtilization, len(hospitals)),
	}

	var prioritySum float64
	for _, rec := range assignment.Records {
		report.PatientSummary.TotalPatients++
		prioritySum += rec.PriorityScore
		if rec.Assigned() {
			report.PatientSummary.AssignedPatients++
		} else {
			report.PatientSummary.UnassignedPatients++
		}
		if rec.RegionalMatch {
			report.PatientSummary.RegionalMatches++
		}
		if rec.MEWSScore != nil && *rec.MEWSScore >= models.CriticalSeverity {
			report.PatientSummary.HighSeverityPatients++
		}
	}
	if report.PatientSummary.TotalPatients > 0 {
		report.PatientSummary.AveragePriorityScore = prioritySum / float64(report.PatientSummary.TotalPatients)
	}

	for i := range hospitals {
		h := &hospitals[i]
		capacity := h.BedsCapacity
		if capacity == 0 {
			capacity = h.BedsAvailable
		}
		assigned := assignment.AssignedCounts[h.Name]
		util := HospitalUtilization{
			Capacity:        capacity,
			CurrentPatients: h.CurrentPatients,
			NewlyAssigned:   assigned,
		}
		if capacity > 0 {
			util.UtilizationPercent = float64(h.CurrentPatients+assigned) / float64(capacity) * 100
		}
		report.HospitalUtilization[h.Name] = util
	}

	if distribution != nil {
		report.Shipments = len(distribution.Shipments)
		for _, s := range distribution.Shipments {
			report.ShipmentUnits += s.Amount
		}
		report.TransportCost = distribution.TotalCost
		report.Shortfalls = distribution.Shortfalls
	}

	return report
}
