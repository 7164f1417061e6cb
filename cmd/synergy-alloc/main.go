package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"synergy-alloc/internal/cache"
	"synergy-alloc/internal/config"
	"synergy-alloc/internal/ingest"
	"synergy-alloc/internal/logger"
	"synergy-alloc/internal/models"
	"synergy-alloc/internal/repository"
	"synergy-alloc/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "synergy-alloc")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Allocation run failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting allocation engine")

	svc := service.New(log, service.Options{
		SolveBudget: cfg.Alloc.SolveBudget,
		Sync:        cfg.Output.Sync,
	})

	var runRepo *repository.RunRepository
	if cfg.Output.UseDB {
		db, err := repository.NewPostgresDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("database unavailable: %w", err)
		}
		defer repository.Close(db)

		snapshots := repository.NewSnapshotRepository(db, log)
		patients, hospitals, suppliers, err := loadFromDB(ctx, snapshots)
		if err != nil {
			return err
		}
		svc.SetSnapshot(patients, hospitals, suppliers)

		runRepo = repository.NewRunRepository(db, log)
		svc.AttachStore(runRepo)
	} else {
		patients, hospitals, suppliers, err := loadFromFiles(ctx, cfg, log)
		if err != nil {
			return err
		}
		svc.SetSnapshot(patients, hospitals, suppliers)
	}

	if cfg.Output.UseCache {
		client := cache.NewRedisClient(&cfg.Redis)
		defer client.Close()
		if err := cache.Ping(ctx, client); err != nil {
			return fmt.Errorf("redis unavailable: %w", err)
		}
		svc.AttachPublisher(cache.NewResultCache(
			client, cfg.Alloc.Cache.KeyPrefix, cfg.Alloc.Cache.ResultTTL, log))
	}

	result, err := svc.RunFull(ctx)
	if err != nil {
		return err
	}

	if cfg.Output.JSONFile != "" && result.Sync != nil {
		if err := writeExports(cfg.Output.JSONFile, result.Sync.Exports); err != nil {
			return err
		}
		log.Info("Wrote patient export", zap.String("path", cfg.Output.JSONFile))
	}

	// When running from files, the synchronized records rewrite the
	// canonical tables in place. DB runs persist through the run store
	// instead.
	if cfg.Output.Sync && !cfg.Output.UseDB {
		writer := ingest.NewWriter(log)
		if err := writer.WritePatients(cfg.Input.PatientsFile, svc.Patients()); err != nil {
			return fmt.Errorf("failed to rewrite patient table: %w", err)
		}
		if err := writer.WriteHospitals(cfg.Input.HospitalsFile, svc.Hospitals()); err != nil {
			return fmt.Errorf("failed to rewrite hospital table: %w", err)
		}
	}

	if result.Degraded {
		log.Warn("Run completed with unmet demand",
			zap.Int("unassigned", result.Report.PatientSummary.UnassignedPatients),
			zap.Int("shortfalls", len(result.Report.Shortfalls)),
		)
	}
	return nil
}

func loadFromDB(ctx context.Context, repo *repository.SnapshotRepository) ([]models.Patient, []models.Hospital, []models.Supplier, error) {
	patients, err := repo.LoadPatients(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	hospitals, err := repo.LoadHospitals(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	suppliers, err := repo.LoadSuppliers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return patients, hospitals, suppliers, nil
}

func loadFromFiles(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]models.Patient, []models.Hospital, []models.Supplier, error) {
	loader := ingest.NewLoader(log)

	var patients []models.Patient
	var err error
	if cfg.Input.IntakeURL != "" {
		intake := ingest.NewIntakeClient(cfg.Input.IntakeURL, loader, log)
		patients, err = intake.FetchPatients(ctx)
	} else {
		patients, err = loader.LoadPatients(cfg.Input.PatientsFile)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load patients: %w", err)
	}

	hospitals, err := loader.LoadHospitals(cfg.Input.HospitalsFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load hospitals: %w", err)
	}
	suppliers, err := loader.LoadSuppliers(cfg.Input.SuppliersFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	return patients, hospitals, suppliers, nil
}

func writeExports(path string, exports []models.PatientExport) error {
	data, err := json.MarshalIndent(exports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal patient export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
