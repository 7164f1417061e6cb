package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPatients_FullRow(t *testing.T) {
	path := writeTempCSV(t, "patients.csv",
		"Patient ID,Patient Name,Region,Triage Priority,MEWS_Score,Time_Criticality_Min,Time of Arrival,Symptoms\n"+
			"P-001,Alice,North,Immediate,7,20,2023-10-01 08:00:00,Chest pain\n")

	loader := NewLoader(zap.NewNop())
	patients, err := loader.LoadPatients(path)
	require.NoError(t, err)
	require.Len(t, patients, 1)

	p := patients[0]
	assert.Equal(t, "P-001", p.PatientID)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "North", p.Region)
	require.NotNil(t, p.TriageRank)
	assert.Equal(t, 1, *p.TriageRank)
	require.NotNil(t, p.MEWSScore)
	assert.Equal(t, 7.0, *p.MEWSScore)
	require.NotNil(t, p.TimeCriticality)
	assert.Equal(t, 20.0, *p.TimeCriticality)
	require.NotNil(t, p.ArrivedAt)
	assert.Equal(t, "Chest pain", p.Symptoms)
}

func TestLoadPatients_CoercionDefaults(t *testing.T) {
	path := writeTempCSV(t, "patients.csv",
		"Patient_ID,Triage Priority,MEWS_Score,Time_Criticality_Min\n"+
			"P-002,Weird Label,not-a-number,n/a\n")

	loader := NewLoader(zap.NewNop())
	patients, err := loader.LoadPatients(path)
	require.NoError(t, err)
	require.Len(t, patients, 1)

	p := patients[0]
	// Unrecognized label maps to the middle rank.
	require.NotNil(t, p.TriageRank)
	assert.Equal(t, 3, *p.TriageRank)
	// Unparsable numerics substitute documented defaults.
	require.NotNil(t, p.MEWSScore)
	assert.Equal(t, DefaultMEWSScore, *p.MEWSScore)
	require.NotNil(t, p.TimeCriticality)
	assert.Equal(t, DefaultTimeCriticality, *p.TimeCriticality)
}

func TestLoadPatients_AbsentSignalsStayAbsent(t *testing.T) {
	path := writeTempCSV(t, "patients.csv",
		"Patient_ID,Patient_Name\nP-003,Carol\n")

	loader := NewLoader(zap.NewNop())
	patients, err := loader.LoadPatients(path)
	require.NoError(t, err)
	require.Len(t, patients, 1)

	p := patients[0]
	assert.Nil(t, p.TriageRank)
	assert.Nil(t, p.MEWSScore)
	assert.Nil(t, p.TimeCriticality)
	assert.Nil(t, p.DerivedSeverity)
	assert.Nil(t, p.ArrivedAt)
}

func TestLoadPatients_MissingIDColumn(t *testing.T) {
	path := writeTempCSV(t, "patients.csv", "Name,Region\nAlice,North\n")

	loader := NewLoader(zap.NewNop())
	_, err := loader.LoadPatients(path)
	assert.Error(t, err)
}

func TestLoadPatients_RowWithoutIDSkipped(t *testing.T) {
	path := writeTempCSV(t, "patients.csv",
		"Patient_ID,Patient_Name\nP-004,Dave\n,NoID\n")

	loader := NewLoader(zap.NewNop())
	patients, err := loader.LoadPatients(path)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "P-004", patients[0].PatientID)
}

func TestLoadHospitals_DefaultsAndFallbacks(t *testing.T) {
	path := writeTempCSV(t, "hospitals.csv",
		"Hospital_ID,Region,Beds_Available,Staff_Available,Current_Patients\n"+
			"H-NOR-001,North,20,10,5\n")

	loader := NewLoader(zap.NewNop())
	hospitals, err := loader.LoadHospitals(path)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)

	h := hospitals[0]
	assert.Equal(t, "Hospital_0", h.Name)
	// Beds_Capacity falls back to Beds_Available, Ventilators to zero.
	assert.Equal(t, 20, h.BedsCapacity)
	assert.Equal(t, 0, h.Ventilators)
	assert.Equal(t, 5, h.CurrentPatients)
}

func TestLoadSuppliers_ColumnSubset(t *testing.T) {
	path := writeTempCSV(t, "suppliers.csv",
		"Supplier_ID,Region,Beds,Staff\nSUP-001,North,500,200\n,South,450,180\n")

	loader := NewLoader(zap.NewNop())
	suppliers, err := loader.LoadSuppliers(path)
	require.NoError(t, err)
	require.Len(t, suppliers, 2)

	s := suppliers[0]
	assert.Equal(t, "SUP-001", s.SupplierID)
	assert.True(t, s.Stocks(models.ResourceBeds))
	assert.True(t, s.Stocks(models.ResourceStaff))
	// Medical_Kits column absent: not distributable by this supplier.
	assert.False(t, s.Stocks(models.ResourceMedicalKits))
	assert.Equal(t, 500, s.Available[models.ResourceBeds])

	// Missing Supplier_ID defaults to the indexed name.
	assert.Equal(t, "Supplier_1", suppliers[1].SupplierID)
}

func TestLoadSuppliers_MissingFileIsEmpty(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	suppliers, err := loader.LoadSuppliers(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Empty(t, suppliers)
}
