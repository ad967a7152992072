package dispatch

// Persisted GORM entities backing the dispatch domain. Customer/Depot/
// Vehicle/Product/Order resolution is thin glue here: just
// enough to let the orchestrator resolve ids into Location/Vehicle/Order
// values.

// DepotRecord is the single origin/terminus for all sub-routes.
type DepotRecord struct {
	ID      uint64 `gorm:"primaryKey"`
	Name    string
	Address string
	X       float64
	Y       float64
}

// CustomerRecord is a delivery destination.
type CustomerRecord struct {
	ID      uint64 `gorm:"primaryKey"`
	Name    string
	Address string
	X       float64
	Y       float64
}

// VehicleRecord is a capacity-bounded dispatch unit.
type VehicleRecord struct {
	ID       uint64 `gorm:"primaryKey"`
	Name     string
	Capacity float64
}

// ProductRecord is a catalog line item.
type ProductRecord struct {
	ID     uint64 `gorm:"primaryKey"`
	Name   string
	Weight float64
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAssigned  OrderStatus = "ASSIGNED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// OrderRecord is a customer request bound to a location, with demand
// computed from its line items.
type OrderRecord struct {
	ID         uint64 `gorm:"primaryKey"`
	CustomerID uint64
	Status     OrderStatus     `gorm:"type:varchar(20)"`
	Items      []OrderProductRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderProductRecord is one line item of an order.
type OrderProductRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	OrderID   uint64
	ProductID uint64
	Quantity  float64
}
