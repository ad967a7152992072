package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"

	"github.com/dispatcher/cvrp-engine/internal/common/repository"
)

// Repository resolves dispatch-request ids into domain values and persists
// Task/TaskStop results. Vehicle/Order/Depot CRUD beyond id resolution
// lives elsewhere.
type Repository struct {
	db   *gorm.DB
	tasks *repository.BaseRepository[Task]
}

// NewRepository builds a dispatch repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:    db,
		tasks: repository.NewBaseRepository[Task](db),
	}
}

// LoadVehicles resolves vehicle ids into Vehicle values, ordered by
// capacity descending, failing InvalidInput if the set is empty or any id
// is unknown.
func (r *Repository) LoadVehicles(ctx context.Context, ids []uint64) ([]Vehicle, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidInputError("vehicle_ids must not be empty")
	}

	var records []VehicleRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, apperrors.NewInternalError(err.Error()).WithInternal(err)
	}
	if len(records) != len(unique(ids)) {
		return nil, apperrors.NewInvalidInputError("one or more vehicle_ids are unknown")
	}

	vehicles := make([]Vehicle, len(records))
	for i, rec := range records {
		vehicles[i] = Vehicle{ID: rec.ID, Capacity: rec.Capacity}
	}
	sort.SliceStable(vehicles, func(i, j int) bool {
		if vehicles[i].Capacity != vehicles[j].Capacity {
			return vehicles[i].Capacity > vehicles[j].Capacity
		}
		return vehicles[i].ID < vehicles[j].ID
	})
	return vehicles, nil
}

// LoadOrders resolves order ids into Order values with demand computed
// from their line items, failing InvalidInput if the set is empty or any
// id is unknown.
func (r *Repository) LoadOrders(ctx context.Context, ids []uint64) ([]Order, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidInputError("order_ids must not be empty")
	}

	var records []OrderRecord
	if err := r.db.WithContext(ctx).Preload("Items").Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, apperrors.NewInternalError(err.Error()).WithInternal(err)
	}
	if len(records) != len(unique(ids)) {
		return nil, apperrors.NewInvalidInputError("one or more order_ids are unknown")
	}

	customerIDs := make([]uint64, 0, len(records))
	productIDs := make(map[uint64]bool)
	for _, rec := range records {
		customerIDs = append(customerIDs, rec.CustomerID)
		for _, item := range rec.Items {
			productIDs[item.ProductID] = true
		}
	}

	var customers []CustomerRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", customerIDs).Find(&customers).Error; err != nil {
		return nil, apperrors.NewInternalError(err.Error()).WithInternal(err)
	}
	customerByID := make(map[uint64]CustomerRecord, len(customers))
	for _, c := range customers {
		customerByID[c.ID] = c
	}

	pids := make([]uint64, 0, len(productIDs))
	for id := range productIDs {
		pids = append(pids, id)
	}
	var products []ProductRecord
	if len(pids) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", pids).Find(&products).Error; err != nil {
			return nil, apperrors.NewInternalError(err.Error()).WithInternal(err)
		}
	}
	productByID := make(map[uint64]Product, len(products))
	for _, p := range products {
		productByID[p.ID] = Product{ID: p.ID, Name: p.Name, Weight: p.Weight}
	}

	orders := make([]Order, len(records))
	for i, rec := range records {
		customer := customerByID[rec.CustomerID]
		items := make([]OrderProduct, len(rec.Items))
		for j, item := range rec.Items {
			items[j] = OrderProduct{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		orders[i] = Order{
			ID:       rec.ID,
			Location: Location{ID: customer.ID, X: customer.X, Y: customer.Y},
			Items:    items,
			Products: productByID,
		}
	}
	return orders, nil
}

// LoadDepot resolves the depot id into a Location, failing InvalidInput if
// unknown.
func (r *Repository) LoadDepot(ctx context.Context, id uint64) (Location, error) {
	var rec DepotRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Location{}, apperrors.NewInvalidInputError(fmt.Sprintf("depot %d not found", id))
		}
		return Location{}, apperrors.NewInternalError(err.Error()).WithInternal(err)
	}
	return Location{ID: rec.ID, X: rec.X, Y: rec.Y, Demand: 0}, nil
}

// SaveTask persists one Task and its TaskStops transactionally.
func (r *Repository) SaveTask(ctx context.Context, task *Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	for i := range task.Stops {
		if task.Stops[i].ID == uuid.Nil {
			task.Stops[i].ID = uuid.New()
		}
		task.Stops[i].TaskID = task.ID
	}
	return r.tasks.Create(ctx, task)
}

func unique(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
