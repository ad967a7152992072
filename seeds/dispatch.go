package seeds

import (
	"log"

	"gorm.io/gorm"

	"github.com/dispatcher/cvrp-engine/internal/dispatch"
)

// SeedDispatchDemo creates one depot, a small delivery fleet, a product
// catalog, and a batch of pending orders around Jakarta — enough to drive a
// POST /api/v1/dispatch call end to end.
func SeedDispatchDemo(db *gorm.DB) error {
	log.Println("📦 Seeding dispatch demo data...")

	depot := dispatch.DepotRecord{
		ID:      1,
		Name:    "Jakarta Pusat Distribution Center",
		Address: "Jl. Jend. Sudirman Kav. 25, Jakarta Pusat",
		X:       106.8229,
		Y:       -6.2088,
	}
	if err := firstOrCreate(db, &dispatch.DepotRecord{}, depot.ID, &depot); err != nil {
		return err
	}

	vehicles := []dispatch.VehicleRecord{
		{ID: 1, Name: "Truck A", Capacity: 500},
		{ID: 2, Name: "Truck B", Capacity: 500},
		{ID: 3, Name: "Van C", Capacity: 200},
	}
	for _, v := range vehicles {
		if err := firstOrCreate(db, &dispatch.VehicleRecord{}, v.ID, &v); err != nil {
			return err
		}
	}

	products := []dispatch.ProductRecord{
		{ID: 1, Name: "Standard Box (10kg)", Weight: 10},
		{ID: 2, Name: "Pallet (80kg)", Weight: 80},
	}
	for _, p := range products {
		if err := firstOrCreate(db, &dispatch.ProductRecord{}, p.ID, &p); err != nil {
			return err
		}
	}

	customers := []dispatch.CustomerRecord{
		{ID: 1, Name: "Toko Makmur", Address: "Jl. Gatot Subroto No. 67, Jakarta Selatan", X: 106.8272, Y: -6.2297},
		{ID: 2, Name: "Warung Sejahtera", Address: "Jl. Rasuna Said No. 12, Jakarta Selatan", X: 106.8317, Y: -6.2241},
		{ID: 3, Name: "Minimarket Harapan", Address: "Jl. Diponegoro No. 34, Jakarta Pusat", X: 106.8371, Y: -6.1957},
		{ID: 4, Name: "Distributor Bersama", Address: "Jl. Kebon Sirih No. 21, Jakarta Pusat", X: 106.8273, Y: -6.1862},
	}
	for _, c := range customers {
		if err := firstOrCreate(db, &dispatch.CustomerRecord{}, c.ID, &c); err != nil {
			return err
		}
	}

	orders := []dispatch.OrderRecord{
		{ID: 1, CustomerID: 1, Status: dispatch.OrderStatusPending, Items: []dispatch.OrderProductRecord{{OrderID: 1, ProductID: 1, Quantity: 5}}},
		{ID: 2, CustomerID: 2, Status: dispatch.OrderStatusPending, Items: []dispatch.OrderProductRecord{{OrderID: 2, ProductID: 2, Quantity: 2}}},
		{ID: 3, CustomerID: 3, Status: dispatch.OrderStatusPending, Items: []dispatch.OrderProductRecord{{OrderID: 3, ProductID: 1, Quantity: 8}}},
		{ID: 4, CustomerID: 4, Status: dispatch.OrderStatusPending, Items: []dispatch.OrderProductRecord{{OrderID: 4, ProductID: 2, Quantity: 1}}},
	}
	for _, o := range orders {
		if err := firstOrCreate(db, &dispatch.OrderRecord{}, o.ID, &o); err != nil {
			return err
		}
	}

	log.Println("  ✅ Seeded 1 depot, 3 vehicles, 2 products, 4 customers, 4 orders")
	return nil
}

// firstOrCreate creates row unless a record with the given id already
// exists, keeping seeding idempotent across repeated runs.
func firstOrCreate(db *gorm.DB, existing interface{}, id uint64, row interface{}) error {
	result := db.First(existing, "id = ?", id)
	if result.Error == gorm.ErrRecordNotFound {
		return db.Create(row).Error
	}
	return result.Error
}
