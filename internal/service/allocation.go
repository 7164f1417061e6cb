package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"synergy-alloc/internal/allocator"
	"synergy-alloc/internal/cache"
	"synergy-alloc/internal/models"
	"synergy-alloc/internal/reporter"
	"synergy-alloc/internal/scorer"
	"synergy-alloc/internal/syncer"
)

var (
	// ErrNoPatients is returned when an allocation run starts with an
	// empty patient snapshot.
	ErrNoPatients = errors.New("no patients to allocate")

	// ErrAssignmentRequired is returned when a stage that consumes
	// assignment output runs before patients were assigned.
	ErrAssignmentRequired = errors.New("patient assignment has not run")
)

// RunStore persists a completed allocation run.
type RunStore interface {
	SaveRun(ctx context.Context, runID string, assignment *allocator.AssignmentResult,
		distribution *allocator.DistributionResult, sync *syncer.SyncResult) error
}

// RunPublisher publishes a completed run for downstream consumers.
type RunPublisher interface {
	PublishRun(ctx context.Context, snapshot *cache.RunSnapshot) error
}

// Options configures an allocation service.
type Options struct {
	SolveBudget time.Duration // wall-clock budget per optimizer solve; 0 = unbounded
	Sync        bool          // apply assignment results back to the canonical records
}

// RunResult is the outcome of one full allocation run.
type RunResult struct {
	RunID        string
	Assignment   *allocator.AssignmentResult
	Distribution *allocator.DistributionResult
	Report       *reporter.Report
	Sync         *syncer.SyncResult

	// Degraded marks a run that completed but could not fully satisfy
	// demand: unassigned patients, supply shortfalls, or a solve that
	// fell back to the greedy pass.
	Degraded bool
}

// Service runs the allocation pipeline over one snapshot: score, assign,
// distribute, report, synchronize. Stages can also be driven one at a
// time; the service enforces their ordering.
type Service struct {
	logger      *zap.Logger
	scorer      *scorer.Scorer
	assigner    *allocator.Assigner
	distributor *allocator.Distributor
	syncer      *syncer.Syncer
	opts        Options

	store     RunStore     // optional
	publisher RunPublisher // optional

	mu           sync.Mutex
	patients     []models.Patient
	hospitals    []models.Hospital
	suppliers    []models.Supplier
	scored       bool
	assignment   *allocator.AssignmentResult
	distribution *allocator.DistributionResult
}

func New(logger *zap.Logger, opts Options) *Service {
	return &Service{
		logger:      logger,
		scorer:      scorer.New(logger),
		assigner:    allocator.NewAssigner(logger, opts.SolveBudget),
		distributor: allocator.NewDistributor(logger),
		syncer:      syncer.New(logger),
		opts:        opts,
	}
}

// AttachStore enables persisting runs to the database.
func (s *Service) AttachStore(store RunStore) {
	s.store = store
}

// AttachPublisher enables publishing runs to the result cache.
func (s *Service) AttachPublisher(publisher RunPublisher) {
	s.publisher = publisher
}

// SetSnapshot loads the records for the next run and resets any stage
// output from a previous one.
func (s *Service) SetSnapshot(patients []models.Patient, hospitals []models.Hospital, suppliers []models.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = patients
	s.hospitals = hospitals
	s.suppliers = suppliers
	s.scored = false
	s.assignment = nil
	s.distribution = nil
}

// Score computes priority scores for the loaded patients.
func (s *Service) Score() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Service) scoreLocked() error {
	if len(s.patients) == 0 {
		return ErrNoPatients
	}
	if s.scored {
		return nil
	}
	s.scorer.ScoreAll(s.patients, s.hospitals)
	s.scored = true
	return nil
}

// Assign matches scored patients to hospitals under capacity
// constraints. Scoring runs first if it has not yet.
func (s *Service) Assign() (*allocator.AssignmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scoreLocked(); err != nil {
		return nil, err
	}
	s.assignment = s.assigner.Assign(s.patients, s.hospitals)
	return s.assignment, nil
}

// Distribute plans supplier shipments against the demand created by the
// assignment. It is an error to call before Assign.
func (s *Service) Distribute() (*allocator.DistributionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assignment == nil {
		return nil, ErrAssignmentRequired
	}
	s.distribution = s.distributor.Distribute(s.hospitals, s.suppliers, s.assignment.AssignedCounts)
	return s.distribution, nil
}

// Report aggregates the run so far. Distribution figures are included
// when Distribute has run.
func (s *Service) Report() (*reporter.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assignment == nil {
		return nil, ErrAssignmentRequired
	}
	return reporter.Build(s.assignment, s.distribution, s.hospitals), nil
}

// Synchronize applies the assignment back to the canonical patient and
// hospital records. The loaded snapshot is replaced by the updated copy
// only when every record resolved, so a failed sync leaves the snapshot
// untouched.
func (s *Service) Synchronize() (*syncer.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synchronizeLocked()
}

func (s *Service) synchronizeLocked() (*syncer.SyncResult, error) {
	if s.assignment == nil {
		return nil, ErrAssignmentRequired
	}
	result, err := s.syncer.Apply(s.patients, s.hospitals, s.assignment)
	if err != nil {
		return nil, err
	}
	s.patients = result.Patients
	s.hospitals = result.Hospitals
	return result, nil
}

// Patients returns the current patient snapshot.
func (s *Service) Patients() []models.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patients
}

// Hospitals returns the current hospital snapshot.
func (s *Service) Hospitals() []models.Hospital {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hospitals
}

// RunFull executes the whole pipeline over the loaded snapshot and, when
// attached, persists and publishes the outcome.
func (s *Service) RunFull(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	started := time.Now()
	s.logger.Info("Starting allocation run",
		zap.String("run_id", runID),
		zap.Int("patients", len(s.Patients())),
	)

	stage := time.Now()
	assignment, err := s.Assign()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Assignment stage done", zap.Duration("took", time.Since(stage)))

	stage = time.Now()
	distribution, err := s.Distribute()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Distribution stage done", zap.Duration("took", time.Since(stage)))

	report, err := s.Report()
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:        runID,
		Assignment:   assignment,
		Distribution: distribution,
		Report:       report,
	}

	if s.opts.Sync {
		sync, err := s.Synchronize()
		if err != nil {
			return nil, fmt.Errorf("state synchronization failed: %w", err)
		}
		result.Sync = sync
	}

	result.Degraded = assignment.Heuristic ||
		report.PatientSummary.UnassignedPatients > 0 ||
		len(report.Shortfalls) > 0

	if s.store != nil {
		if err := s.store.SaveRun(ctx, runID, assignment, distribution, result.Sync); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
	}
	if s.publisher != nil {
		snapshot := &cache.RunSnapshot{
			RunID:       runID,
			GeneratedAt: time.Now().UTC(),
			Report:      report,
			Allocations: assignment.Records,
			Shipments:   distribution.Shipments,
		}
		if err := s.publisher.PublishRun(ctx, snapshot); err != nil {
			// Cache publication is best effort; the run already succeeded.
			s.logger.Warn("Failed to publish run to cache",
				zap.String("run_id", runID), zap.Error(err))
		}
	}

	s.logger.Info("Allocation run complete",
		zap.String("run_id", runID),
		zap.Duration("took", time.Since(started)),
		zap.Int("assigned", report.PatientSummary.AssignedPatients),
		zap.Int("unassigned", report.PatientSummary.UnassignedPatients),
		zap.Int("shipments", report.Shipments),
		zap.Bool("degraded", result.Degraded),
	)
	return result, nil
}
