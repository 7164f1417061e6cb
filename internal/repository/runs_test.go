package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"synergy-alloc/internal/allocator"
	"synergy-alloc/internal/models"
	"synergy-alloc/internal/syncer"
)

func testRunAssignment() *allocator.AssignmentResult {
	region := "North"
	return &allocator.AssignmentResult{
		Records: []models.AllocationRecord{
			{PatientID: "P1", PatientName: "Alice", PatientRegion: "North",
				PriorityScore: 80, AssignedHospital: "North General",
				HospitalRegion: &region, RegionalMatch: true},
		},
		AssignedCounts: map[string]int{"North General": 1},
	}
}

func TestSaveRun_CommitsEverything(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRunRepository(db, zap.NewNop())
	runID := uuid.New().String()

	distribution := &allocator.DistributionResult{
		Shipments: []models.ShipmentRecord{
			{SupplierID: "SUP-001", HospitalName: "North General",
				Resource: models.ResourceBeds, Amount: 1, RegionalMatch: true, Cost: 1},
		},
	}
	sync := &syncer.SyncResult{
		Patients: []models.Patient{
			{PatientID: "P1", AssignedHospital: "North General", Status: "Critical"},
		},
		Hospitals: []models.Hospital{
			{HospitalID: "H-1", CurrentPatients: 11, BedsAvailable: 4},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO allocation_records`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO shipment_records`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE patients`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE hospitals`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.SaveRun(context.Background(), runID, testRunAssignment(), distribution, sync)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun_MissingPatientRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRunRepository(db, zap.NewNop())
	sync := &syncer.SyncResult{
		Patients: []models.Patient{{PatientID: "ghost"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO allocation_records`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE patients`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.SaveRun(context.Background(), uuid.New().String(), testRunAssignment(), nil, sync)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun_WithoutSyncOrShipments(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRunRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO allocation_records`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.SaveRun(context.Background(), uuid.New().String(), testRunAssignment(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
