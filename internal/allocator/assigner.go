package allocator

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// RegionalMultiplier rewards assigning a patient to a hospital in their
// own region. A soft preference: cross-region assignment stays legal.
const RegionalMultiplier = 2.0

// AssignmentResult is the full outcome of one patient-hospital solve.
// Records holds exactly one entry per input patient, in input order,
// including Unassigned sentinels.
type AssignmentResult struct {
	Records        []models.AllocationRecord
	AssignedCounts map[string]int // hospital name -> newly assigned patients
	TotalWeight    float64
	Heuristic      bool // greedy fallback was used (solve budget exceeded)
}

// Assigner solves the capacity-constrained patient-hospital assignment,
// maximizing priority-weighted regional coverage.
type Assigner struct {
	logger      *zap.Logger
	solveBudget time.Duration
}

func NewAssigner(logger *zap.Logger, solveBudget time.Duration) *Assigner {
	return &Assigner{logger: logger, solveBudget: solveBudget}
}

func weight(p *models.Patient, h *models.Hospital) float64 {
	if p.Region == h.Region {
		return p.PriorityScore * RegionalMultiplier
	}
	return p.PriorityScore
}

// hospitalCap is the per-run patient cap: beds bound assignments
// directly, staff at one per two patients.
func hospitalCap(h *models.Hospital) int {
	beds := h.EffectiveBeds()
	staff := h.StaffPatientCap()
	if staff < beds {
		return staff
	}
	return beds
}

// Assign produces one AllocationRecord per patient. Infeasibility is
// never an error: patients that cannot be placed within the bed, staff
// and ventilator constraints get the Unassigned sentinel.
func (a *Assigner) Assign(patients []models.Patient, hospitals []models.Hospital) *AssignmentResult {
	result := &AssignmentResult{
		Records:        make([]models.AllocationRecord, 0, len(patients)),
		AssignedCounts: make(map[string]int),
	}
	if len(patients) == 0 {
		return result
	}

	assignment := make([]int, len(patients)) // hospital index or -1
	for i := range assignment {
		assignment[i] = -1
	}

	if len(hospitals) > 0 {
		exceeded := a.solveExact(patients, hospitals, assignment)
		if exceeded {
			a.logger.Warn("Assignment solve budget exceeded, falling back to greedy heuristic",
				zap.Duration("budget", a.solveBudget),
			)
			for i := range assignment {
				assignment[i] = -1
			}
			a.solveGreedy(patients, hospitals, assignment)
			result.Heuristic = true
		}
	}

	for i := range patients {
		p := &patients[i]
		rec := models.AllocationRecord{
			PatientID:     p.PatientID,
			PatientName:   p.Name,
			PatientRegion: p.Region,
			PriorityScore: p.PriorityScore,
			MEWSScore:     p.MEWSScore,
		}
		if j := assignment[i]; j >= 0 {
			h := &hospitals[j]
			region := h.Region
			rec.AssignedHospital = h.Name
			rec.HospitalRegion = &region
			rec.RegionalMatch = p.Region == h.Region
			result.AssignedCounts[h.Name]++
			result.TotalWeight += weight(p, h)
		} else {
			rec.AssignedHospital = models.HospitalUnassigned
			rec.HospitalRegion = nil
			rec.RegionalMatch = false
		}
		result.Records = append(result.Records, rec)
	}

	a.logger.Info("Patient assignment solved",
		zap.Int("patients", len(patients)),
		zap.Int("hospitals", len(hospitals)),
		zap.Int("assigned", len(patients)-countUnassigned(assignment)),
		zap.Float64("total_weight", result.TotalWeight),
		zap.Bool("heuristic", result.Heuristic),
	)
	return result
}

func countUnassigned(assignment []int) int {
	n := 0
	for _, j := range assignment {
		if j < 0 {
			n++
		}
	}
	return n
}

// solveExact formulates the assignment as a min-cost flow: each patient
// node carries one unit, hospital entry is gated by a ventilator node
// for critical patients, and the hospital sink edge carries the
// min(beds, staff) cap. Augmentation stops when the best remaining path
// no longer increases total weight, which yields the optimum.
func (a *Assigner) solveExact(patients []models.Patient, hospitals []models.Hospital, assignment []int) (budgetExceeded bool) {
	nP, nH := len(patients), len(hospitals)

	// Layout: 0 source, 1 sink, 2..2+nP patients,
	// then per hospital: general node, ventilator node, gate node.
	source, sink := 0, 1
	patientNode := func(i int) int { return 2 + i }
	generalNode := func(j int) int { return 2 + nP + 3*j }
	ventNode := func(j int) int { return 2 + nP + 3*j + 1 }
	gateNode := func(j int) int { return 2 + nP + 3*j + 2 }

	f := newFlowNetwork(2 + nP + 3*nH)

	for j := range hospitals {
		h := &hospitals[j]
		f.addEdge(generalNode(j), gateNode(j), nP, 0)
		f.addEdge(ventNode(j), gateNode(j), h.Ventilators, 0)
		f.addEdge(gateNode(j), sink, hospitalCap(h), 0)
	}

	pairEdges := make([][]int, nP)
	for i := range patients {
		p := &patients[i]
		f.addEdge(source, patientNode(i), 1, 0)
		pairEdges[i] = make([]int, nH)
		for j := range hospitals {
			h := &hospitals[j]
			entry := generalNode(j)
			if p.Critical() {
				entry = ventNode(j)
			}
			pairEdges[i][j] = f.addEdge(patientNode(i), entry, 1, -weight(p, h))
		}
	}

	var deadline time.Time
	if a.solveBudget > 0 {
		deadline = time.Now().Add(a.solveBudget)
	}
	_, _, exceeded := f.run(source, sink, true, deadline)
	if exceeded {
		return true
	}

	for i := range patients {
		for j := range hospitals {
			if f.flowOf(pairEdges[i][j]) > 0 {
				assignment[i] = j
				break
			}
		}
	}
	return false
}

// solveGreedy is the solve-budget fallback: patients in descending
// priority order take the highest-weight hospital with remaining bed,
// staff and (if critical) ventilator capacity.
func (a *Assigner) solveGreedy(patients []models.Patient, hospitals []models.Hospital, assignment []int) {
	order := make([]int, len(patients))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return patients[order[x]].PriorityScore > patients[order[y]].PriorityScore
	})

	remaining := make([]int, len(hospitals))
	vents := make([]int, len(hospitals))
	for j := range hospitals {
		remaining[j] = hospitalCap(&hospitals[j])
		vents[j] = hospitals[j].Ventilators
	}

	for _, i := range order {
		p := &patients[i]
		best := -1
		var bestWeight float64
		for j := range hospitals {
			if remaining[j] <= 0 {
				continue
			}
			if p.Critical() && vents[j] <= 0 {
				continue
			}
			if w := weight(p, &hospitals[j]); best < 0 || w > bestWeight {
				best, bestWeight = j, w
			}
		}
		if best < 0 {
			continue
		}
		assignment[i] = best
		remaining[best]--
		if p.Critical() {
			vents[best]--
		}
	}
}
