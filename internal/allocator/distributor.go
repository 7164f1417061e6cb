package allocator

import (
	"math"
	"time"

	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// Transportation cost multipliers: same-region routes are cheap,
// cross-region routes cost triple (a proxy for distance).
const (
	CostSameRegion  = 1
	CostCrossRegion = 3
)

// ResourceDemand is one hospital's derived need for one resource type.
type ResourceDemand struct {
	HospitalName string
	Resource     string
	Needed       int
	Received     int
}

// DistributionResult is the outcome of one supplier-hospital solve.
type DistributionResult struct {
	Shipments  []models.ShipmentRecord
	Shortfalls []models.Shortfall
	Demands    []ResourceDemand
	TotalCost  int
}

// Distributor routes resource quantities from suppliers to hospitals at
// minimum aggregate transportation cost, covering each hospital's
// post-assignment incremental need as far as supply allows.
type Distributor struct {
	logger *zap.Logger
}

func NewDistributor(logger *zap.Logger) *Distributor {
	return &Distributor{logger: logger}
}

// demandFor derives the incremental need for one hospital from its
// newly-assigned patient count.
func demandFor(resource string, newPatients int) int {
	switch resource {
	case models.ResourceStaff:
		return int(math.Ceil(float64(newPatients) * 0.5))
	default:
		return newPatients
	}
}

// Distribute solves one transportation problem per demanded resource
// type. Degenerate inputs (no suppliers, no overlapping resource types)
// yield an empty shipment set; unmet demand is returned as shortfalls,
// never as an error.
func (d *Distributor) Distribute(hospitals []models.Hospital, suppliers []models.Supplier, assignedCounts map[string]int) *DistributionResult {
	result := &DistributionResult{}
	if len(hospitals) == 0 || len(suppliers) == 0 {
		return result
	}

	// Suppliers without a region default to the first hospital's.
	regions := make([]string, len(suppliers))
	for s := range suppliers {
		regions[s] = suppliers[s].Region
		if regions[s] == "" {
			regions[s] = hospitals[0].Region
		}
	}

	// Only resource types present in the supplier schema participate.
	for _, resource := range models.ResourceTypes {
		capable := false
		for s := range suppliers {
			if suppliers[s].Stocks(resource) {
				capable = true
				break
			}
		}
		if !capable {
			continue
		}
		d.distributeResource(resource, hospitals, suppliers, regions, assignedCounts, result)
	}

	d.logger.Info("Supplier distribution solved",
		zap.Int("shipments", len(result.Shipments)),
		zap.Int("shortfalls", len(result.Shortfalls)),
		zap.Int("total_cost", result.TotalCost),
	)
	return result
}

// distributeResource runs the min-cost transportation solve for one
// resource type and appends shipments, demand coverage and shortfalls.
func (d *Distributor) distributeResource(
	resource string,
	hospitals []models.Hospital,
	suppliers []models.Supplier,
	regions []string,
	assignedCounts map[string]int,
	result *DistributionResult,
) {
	nS, nH := len(suppliers), len(hospitals)

	demands := make([]int, nH)
	totalDemand := 0
	for j := range hospitals {
		demands[j] = demandFor(resource, assignedCounts[hospitals[j].Name])
		totalDemand += demands[j]
	}
	if totalDemand == 0 {
		return
	}

	// Layout: 0 source, 1 sink, 2..2+nS suppliers, then hospitals.
	source, sink := 0, 1
	supplierNode := func(s int) int { return 2 + s }
	hospitalNode := func(j int) int { return 2 + nS + j }

	f := newFlowNetwork(2 + nS + nH)
	for s := range suppliers {
		f.addEdge(source, supplierNode(s), suppliers[s].Available[resource], 0)
	}
	for j := range hospitals {
		f.addEdge(hospitalNode(j), sink, demands[j], 0)
	}

	routeEdges := make([][]int, nS)
	for s := range suppliers {
		if !suppliers[s].Stocks(resource) {
			continue
		}
		routeEdges[s] = make([]int, nH)
		for j := range hospitals {
			cost := CostCrossRegion
			if regions[s] == hospitals[j].Region {
				cost = CostSameRegion
			}
			routeEdges[s][j] = f.addEdge(supplierNode(s), hospitalNode(j), suppliers[s].Available[resource], float64(cost))
		}
	}

	f.run(source, sink, false, time.Time{})

	received := make([]int, nH)
	for s := range suppliers {
		if routeEdges[s] == nil {
			continue
		}
		for j := range hospitals {
			amount := f.flowOf(routeEdges[s][j])
			if amount <= 0 {
				continue
			}
			cost := CostCrossRegion
			match := regions[s] == hospitals[j].Region
			if match {
				cost = CostSameRegion
			}
			result.Shipments = append(result.Shipments, models.ShipmentRecord{
				SupplierID:    suppliers[s].SupplierID,
				HospitalName:  hospitals[j].Name,
				Resource:      resource,
				Amount:        amount,
				RegionalMatch: match,
				Cost:          cost * amount,
			})
			result.TotalCost += cost * amount
			received[j] += amount
		}
	}

	for j := range hospitals {
		if demands[j] == 0 {
			continue
		}
		result.Demands = append(result.Demands, ResourceDemand{
			HospitalName: hospitals[j].Name,
			Resource:     resource,
			Needed:       demands[j],
			Received:     received[j],
		})
		if received[j] < demands[j] {
			result.Shortfalls = append(result.Shortfalls, models.Shortfall{
				HospitalName: hospitals[j].Name,
				Resource:     resource,
				Missing:      demands[j] - received[j],
			})
		}
	}
}
