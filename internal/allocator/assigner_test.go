package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func northSouthHospitals(northBeds int) []models.Hospital {
	return []models.Hospital{
		{HospitalID: "H-NOR-001", Name: "North General", Region: "North",
			BedsAvailable: northBeds, StaffAvailable: 2, Ventilators: 1},
		{HospitalID: "H-SOU-001", Name: "South Central", Region: "South",
			BedsAvailable: 1, StaffAvailable: 1, Ventilators: 0},
	}
}

func threePatients() []models.Patient {
	return []models.Patient{
		{PatientID: "P1", Name: "P1", Region: "North", PriorityScore: 80, MEWSScore: floatPtr(7)},
		{PatientID: "P2", Name: "P2", Region: "South", PriorityScore: 60, MEWSScore: floatPtr(3)},
		{PatientID: "P3", Name: "P3", Region: "North", PriorityScore: 40, MEWSScore: floatPtr(2)},
	}
}

func recordByID(t *testing.T, records []models.AllocationRecord, id string) models.AllocationRecord {
	t.Helper()
	for _, r := range records {
		if r.PatientID == id {
			return r
		}
	}
	t.Fatalf("no record for %s", id)
	return models.AllocationRecord{}
}

func TestAssign_RegionalCapacityFit(t *testing.T) {
	a := NewAssigner(zap.NewNop(), 0)
	result := a.Assign(threePatients(), northSouthHospitals(2))

	require.Len(t, result.Records, 3)
	assert.Equal(t, "North General", recordByID(t, result.Records, "P1").AssignedHospital)
	assert.Equal(t, "South Central", recordByID(t, result.Records, "P2").AssignedHospital)
	assert.Equal(t, "North General", recordByID(t, result.Records, "P3").AssignedHospital)

	for _, r := range result.Records {
		assert.True(t, r.Assigned())
		assert.True(t, r.RegionalMatch)
	}
	assert.Equal(t, 2, result.AssignedCounts["North General"])
	assert.Equal(t, 1, result.AssignedCounts["South Central"])
}

func TestAssign_ScarceBedsPrefersHigherScore(t *testing.T) {
	a := NewAssigner(zap.NewNop(), 0)
	result := a.Assign(threePatients(), northSouthHospitals(1))

	p1 := recordByID(t, result.Records, "P1")
	p3 := recordByID(t, result.Records, "P3")

	// One North bed: the higher-score P1 wins it, P3 is left out.
	assert.Equal(t, "North General", p1.AssignedHospital)
	assert.Equal(t, models.HospitalUnassigned, p3.AssignedHospital)
	assert.Nil(t, p3.HospitalRegion)
	assert.False(t, p3.RegionalMatch)
	assert.Equal(t, "South Central", recordByID(t, result.Records, "P2").AssignedHospital)
}

func TestAssign_VentilatorConstraint(t *testing.T) {
	hospitals := []models.Hospital{
		{HospitalID: "H-1", Name: "H-1", Region: "North",
			BedsAvailable: 10, StaffAvailable: 10, Ventilators: 1},
	}
	patients := []models.Patient{
		{PatientID: "C1", Name: "C1", Region: "North", PriorityScore: 90, MEWSScore: floatPtr(8)},
		{PatientID: "C2", Name: "C2", Region: "North", PriorityScore: 85, MEWSScore: floatPtr(6)},
		{PatientID: "S1", Name: "S1", Region: "North", PriorityScore: 50, MEWSScore: floatPtr(2)},
	}

	result := NewAssigner(zap.NewNop(), 0).Assign(patients, hospitals)

	critical := 0
	for _, r := range result.Records {
		if r.Assigned() && r.MEWSScore != nil && *r.MEWSScore >= models.CriticalSeverity {
			critical++
		}
	}
	// Beds would fit everyone; the single ventilator caps criticals at one.
	assert.Equal(t, 1, critical)
	assert.Equal(t, "H-1", recordByID(t, result.Records, "C1").AssignedHospital)
	assert.Equal(t, models.HospitalUnassigned, recordByID(t, result.Records, "C2").AssignedHospital)
	assert.Equal(t, "H-1", recordByID(t, result.Records, "S1").AssignedHospital)
}

func TestAssign_StaffConstraint(t *testing.T) {
	hospitals := []models.Hospital{
		{HospitalID: "H-1", Name: "H-1", Region: "North",
			BedsAvailable: 10, StaffAvailable: 1, Ventilators: 0},
	}
	var patients []models.Patient
	for _, id := range []string{"P1", "P2", "P3"} {
		patients = append(patients, models.Patient{
			PatientID: id, Name: id, Region: "North", PriorityScore: 50,
		})
	}

	result := NewAssigner(zap.NewNop(), 0).Assign(patients, hospitals)

	// One staff member covers two patients; beds alone would fit three.
	assigned := 0
	for _, r := range result.Records {
		if r.Assigned() {
			assigned++
		}
	}
	assert.Equal(t, 2, assigned)
}

func TestAssign_NoHospitals(t *testing.T) {
	result := NewAssigner(zap.NewNop(), 0).Assign(threePatients(), nil)

	require.Len(t, result.Records, 3)
	for _, r := range result.Records {
		assert.Equal(t, models.HospitalUnassigned, r.AssignedHospital)
		assert.False(t, r.RegionalMatch)
	}
	assert.Empty(t, result.AssignedCounts)
}

func TestAssign_CrossRegionStillLegal(t *testing.T) {
	hospitals := []models.Hospital{
		{HospitalID: "H-1", Name: "East Care", Region: "East",
			BedsAvailable: 5, StaffAvailable: 5, Ventilators: 0},
	}
	patients := []models.Patient{
		{PatientID: "P1", Name: "P1", Region: "West", PriorityScore: 30},
	}

	result := NewAssigner(zap.NewNop(), 0).Assign(patients, hospitals)

	r := result.Records[0]
	assert.Equal(t, "East Care", r.AssignedHospital)
	assert.False(t, r.RegionalMatch)
}

func TestAssign_AtMostOneHospitalPerPatient(t *testing.T) {
	result := NewAssigner(zap.NewNop(), 0).Assign(threePatients(), northSouthHospitals(2))

	seen := make(map[string]int)
	for _, r := range result.Records {
		seen[r.PatientID]++
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "patient %s has %d records", id, n)
	}
}

func TestAssign_CapacityInvariantUnderLoad(t *testing.T) {
	hospitals := []models.Hospital{
		{HospitalID: "H-1", Name: "H-1", Region: "North",
			BedsAvailable: 3, StaffAvailable: 1, Ventilators: 1},
		{HospitalID: "H-2", Name: "H-2", Region: "South",
			BedsAvailable: 2, StaffAvailable: 4, Ventilators: 0},
	}
	var patients []models.Patient
	for i := 0; i < 12; i++ {
		p := models.Patient{
			PatientID:     string(rune('A' + i)),
			Region:        "North",
			PriorityScore: float64(100 - i),
		}
		if i%3 == 0 {
			p.MEWSScore = floatPtr(6)
		}
		patients = append(patients, p)
	}

	result := NewAssigner(zap.NewNop(), 0).Assign(patients, hospitals)

	counts := map[string]int{}
	criticals := map[string]int{}
	for _, r := range result.Records {
		if !r.Assigned() {
			continue
		}
		counts[r.AssignedHospital]++
		if r.MEWSScore != nil && *r.MEWSScore >= models.CriticalSeverity {
			criticals[r.AssignedHospital]++
		}
	}
	for _, h := range hospitals {
		assert.LessOrEqual(t, counts[h.Name], hospitalCap(&h))
		assert.LessOrEqual(t, criticals[h.Name], h.Ventilators)
	}
}

func TestSolveGreedy_RespectsConstraints(t *testing.T) {
	patients := threePatients()
	hospitals := northSouthHospitals(1)
	assignment := []int{-1, -1, -1}

	NewAssigner(zap.NewNop(), 0).solveGreedy(patients, hospitals, assignment)

	// Highest score first: P1 takes the single North bed, P2 the South
	// bed, P3 has nowhere feasible left.
	assert.Equal(t, 0, assignment[0])
	assert.Equal(t, 1, assignment[1])
	assert.Equal(t, -1, assignment[2])
}
