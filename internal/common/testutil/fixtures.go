package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/dispatcher/cvrp-engine/internal/dispatch"
	"github.com/dispatcher/cvrp-engine/pkg/models"
)

// NewTestCompany creates a test company with default values
func NewTestCompany() *models.Company {
	return &models.Company{
		ID:               uuid.New().String(),
		Name:             "Test Company",
		Email:            "test@company.com",
		Phone:            "+62 21 1234567",
		NPWP:             "01.234.567.8-901.000",
		City:             "Jakarta",
		Province:         "DKI Jakarta",
		Country:          "Indonesia",
		CompanyType:      "PT",
		FleetSize:        10,
		MaxVehicles:      100,
		IsActive:         true,
		SubscriptionTier: "basic",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

// NewTestUser creates a test user with default values
func NewTestUser(companyID string) *models.User {
	return &models.User{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Email:       "test@user.com",
		Username:    "testuser",
		Password:    "$2a$12$LQv3c1yqBWVHxkd0LHAkCOYz6TtxMQJqhN8/LewY5lW5h8TQz5yPW", // password123
		FirstName:   "Test",
		LastName:    "User",
		Phone:       "+62 811 1234567",
		Role:        "admin",
		Status:      "active",
		IsActive:    true,
		IsVerified:  true,
		Language:    "id",
		Timezone:    "Asia/Jakarta",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// NewTestDepot creates a test depot record at the given coordinate.
func NewTestDepot(id uint64, x, y float64) *dispatch.DepotRecord {
	return &dispatch.DepotRecord{
		ID:      id,
		Name:    "Test Depot",
		Address: "Jakarta",
		X:       x,
		Y:       y,
	}
}

// NewTestVehicleRecord creates a test vehicle with the given capacity.
func NewTestVehicleRecord(id uint64, capacity float64) *dispatch.VehicleRecord {
	return &dispatch.VehicleRecord{
		ID:       id,
		Name:     "Test Vehicle",
		Capacity: capacity,
	}
}

// NewTestCustomer creates a test customer record at the given coordinate.
func NewTestCustomer(id uint64, x, y float64) *dispatch.CustomerRecord {
	return &dispatch.CustomerRecord{
		ID:      id,
		Name:    "Test Customer",
		Address: "Jakarta",
		X:       x,
		Y:       y,
	}
}

// NewTestProduct creates a test product with the given weight.
func NewTestProduct(id uint64, weight float64) *dispatch.ProductRecord {
	return &dispatch.ProductRecord{
		ID:     id,
		Name:   "Test Product",
		Weight: weight,
	}
}

// NewTestOrder creates a test order for customerID with a single line item
// demanding quantity units of productID.
func NewTestOrder(id, customerID, productID uint64, quantity float64) *dispatch.OrderRecord {
	return &dispatch.OrderRecord{
		ID:         id,
		CustomerID: customerID,
		Status:     dispatch.OrderStatusPending,
		Items: []dispatch.OrderProductRecord{
			{OrderID: id, ProductID: productID, Quantity: quantity},
		},
	}
}


// Helper function to create pointer to string
func PtrString(s string) *string {
	return &s
}

// Helper function to create pointer to time
func PtrTime(t time.Time) *time.Time {
	return &t
}

