package models

// Resource types a supplier may stock. Absent map keys mean the supplier
// does not distribute that resource type at all.
const (
	ResourceBeds        = "Beds"
	ResourceStaff       = "Staff"
	ResourceMedicalKits = "Medical_Kits"
)

// ResourceTypes lists the distributable resource types in schema order.
var ResourceTypes = []string{ResourceBeds, ResourceStaff, ResourceMedicalKits}

// Supplier is the canonical supplier record. Available quantities are
// keyed by resource type.
type Supplier struct {
	SupplierID string         `json:"supplier_id" db:"supplier_id"`
	Region     string         `json:"region" db:"region"`
	Available  map[string]int `json:"available"`
}

// Stocks reports whether the supplier carries the given resource type.
func (s *Supplier) Stocks(resource string) bool {
	_, ok := s.Available[resource]
	return ok
}
