package ingest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

func TestWritePatients_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patients.csv")

	mews := 7.0
	rank := 1
	arrived := time.Date(2023, 10, 1, 8, 30, 0, 0, time.UTC)
	patients := []models.Patient{
		{
			PatientID:        "P-001",
			Name:             "Alice",
			Region:           "North",
			TriageCategory:   "Immediate",
			TriageRank:       &rank,
			MEWSScore:        &mews,
			Symptoms:         "Chest pain",
			Diagnosis:        "Suspected MI",
			ArrivedAt:        &arrived,
			PriorityScore:    80.5,
			AssignedHospital: "North General",
			Status:           "Critical",
		},
		{
			PatientID:        "P-002",
			Name:             "Bob",
			AssignedHospital: models.HospitalUnassigned,
		},
	}

	writer := NewWriter(zap.NewNop())
	require.NoError(t, writer.WritePatients(path, patients))

	loaded, err := NewLoader(zap.NewNop()).LoadPatients(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	p := loaded[0]
	assert.Equal(t, "P-001", p.PatientID)
	assert.Equal(t, "Immediate", p.TriageCategory)
	require.NotNil(t, p.TriageRank)
	assert.Equal(t, 1, *p.TriageRank)
	require.NotNil(t, p.MEWSScore)
	assert.Equal(t, 7.0, *p.MEWSScore)
	require.NotNil(t, p.ArrivedAt)
	assert.True(t, p.ArrivedAt.Equal(arrived))
	assert.Equal(t, "Suspected MI", p.Diagnosis)

	// Absent signals stay absent through a rewrite.
	assert.Nil(t, loaded[1].MEWSScore)
	assert.Nil(t, loaded[1].ArrivedAt)
}

func TestWriteHospitals_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hospitals.csv")

	hospitals := []models.Hospital{
		{HospitalID: "H-NOR-001", Name: "North General", Region: "North",
			BedsAvailable: 17, BedsCapacity: 200, StaffAvailable: 85.5,
			Ventilators: 10, CurrentPatients: 183},
	}

	writer := NewWriter(zap.NewNop())
	require.NoError(t, writer.WriteHospitals(path, hospitals))

	loaded, err := NewLoader(zap.NewNop()).LoadHospitals(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, hospitals[0], loaded[0])
}

func TestWriteHospitals_XLSXRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hospitals.xlsx")

	hospitals := []models.Hospital{
		{HospitalID: "H-SOU-001", Name: "South Clinic", Region: "South",
			BedsAvailable: 5, BedsCapacity: 20, StaffAvailable: 8,
			Ventilators: 1, CurrentPatients: 15},
	}

	writer := NewWriter(zap.NewNop())
	require.NoError(t, writer.WriteHospitals(path, hospitals))

	loaded, err := NewLoader(zap.NewNop()).LoadHospitals(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, hospitals[0], loaded[0])
}
