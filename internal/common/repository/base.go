// Package repository provides a generic GORM-backed repository with
// filtering, pagination, and transaction support.
package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
)

// Repository is the generic persistence interface implemented by
// BaseRepository.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters FilterOptions, pagination Pagination) ([]*T, error)
	Count(ctx context.Context, filters FilterOptions) (int64, error)
}

// DateRange bounds a date-valued field filter; either side may be empty.
type DateRange struct {
	Start string
	End   string
}

// Condition is a single custom filter condition
type Condition struct {
	Field    string
	Operator string
	Value    interface{}
}

// FilterOptions holds the supported query filters
type FilterOptions struct {
	Where     map[string]interface{}
	WhereIn   map[string][]interface{}
	WhereNot  map[string]interface{}
	WhereLike map[string]string
	DateRange map[string]DateRange
	Conditions []Condition
	Search    string
	SearchIn  []string
}

// Pagination holds offset/limit or page/page-size pagination parameters
type Pagination struct {
	Offset   int
	Limit    int
	Page     int
	PageSize int
}

// BaseRepository implements the base repository interface using GORM
type BaseRepository[T any] struct {
	db    *gorm.DB
	model *T
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	var model T
	return &BaseRepository[T]{
		db:    db,
		model: &model,
	}
}

// Create creates a new entity
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// GetByID retrieves an entity by its ID
func (r *BaseRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("entity not found with id: %s", id)
		}
		return nil, fmt.Errorf("failed to get entity by id: %w", err)
	}
	return &entity, nil
}

// Update updates an existing entity
func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	return nil
}

// Delete soft deletes an entity (if model has DeletedAt field) or hard deletes
func (r *BaseRepository[T]) Delete(ctx context.Context, id string) error {
	var entity T

	// Check if the model has DeletedAt field for soft delete
	if r.hasDeletedAtField() {
		if err := r.db.WithContext(ctx).Delete(&entity, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
	} else {
		// Hard delete
		if err := r.db.WithContext(ctx).Unscoped().Delete(&entity, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
	}
	return nil
}

// List retrieves entities with filtering and pagination
func (r *BaseRepository[T]) List(ctx context.Context, filters FilterOptions, pagination Pagination) ([]*T, error) {
	var entities []*T
	query := r.db.WithContext(ctx)

	// Apply filters
	query = r.applyFilters(query, filters)

	// Apply pagination
	query = r.applyPagination(query, pagination)

	// Execute query
	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return entities, nil
}

// Count counts entities with filtering
func (r *BaseRepository[T]) Count(ctx context.Context, filters FilterOptions) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(r.model)

	// Apply filters
	query = r.applyFilters(query, filters)

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}

	return count, nil
}

// WithTransaction executes a function within a database transaction
func (r *BaseRepository[T]) WithTransaction(ctx context.Context, fn func(Repository[T]) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &BaseRepository[T]{
			db:    tx,
			model: r.model,
		}
		return fn(txRepo)
	})
}

// applyFilters applies filter options to a GORM query
func (r *BaseRepository[T]) applyFilters(query *gorm.DB, filters FilterOptions) *gorm.DB {
	// Apply basic where conditions
	for field, value := range filters.Where {
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}

	// Apply where in conditions
	for field, values := range filters.WhereIn {
		query = query.Where(fmt.Sprintf("%s IN ?", field), values)
	}

	// Apply where not conditions
	for field, value := range filters.WhereNot {
		query = query.Where(fmt.Sprintf("%s != ?", field), value)
	}

	// Apply like conditions
	for field, pattern := range filters.WhereLike {
		query = query.Where(fmt.Sprintf("%s LIKE ?", field), "%"+pattern+"%")
	}

	// Apply date range filters
	for field, dateRange := range filters.DateRange {
		if dateRange.Start != "" {
			query = query.Where(fmt.Sprintf("%s >= ?", field), dateRange.Start)
		}
		if dateRange.End != "" {
			query = query.Where(fmt.Sprintf("%s <= ?", field), dateRange.End)
		}
	}

	// Apply custom conditions
	for _, condition := range filters.Conditions {
		query = r.applyCondition(query, condition)
	}

	// Apply text search
	if filters.Search != "" && len(filters.SearchIn) > 0 {
		var searchConditions []string
		var searchArgs []interface{}

		for _, field := range filters.SearchIn {
			searchConditions = append(searchConditions, fmt.Sprintf("%s ILIKE ?", field))
			searchArgs = append(searchArgs, "%"+filters.Search+"%")
		}

		if len(searchConditions) > 0 {
			query = query.Where(strings.Join(searchConditions, " OR "), searchArgs...)
		}
	}

	return query
}

// applyCondition applies a custom condition to a GORM query
func (r *BaseRepository[T]) applyCondition(query *gorm.DB, condition Condition) *gorm.DB {
	switch strings.ToUpper(condition.Operator) {
	case "=":
		return query.Where(fmt.Sprintf("%s = ?", condition.Field), condition.Value)
	case "!=":
		return query.Where(fmt.Sprintf("%s != ?", condition.Field), condition.Value)
	case ">":
		return query.Where(fmt.Sprintf("%s > ?", condition.Field), condition.Value)
	case ">=":
		return query.Where(fmt.Sprintf("%s >= ?", condition.Field), condition.Value)
	case "<":
		return query.Where(fmt.Sprintf("%s < ?", condition.Field), condition.Value)
	case "<=":
		return query.Where(fmt.Sprintf("%s <= ?", condition.Field), condition.Value)
	case "IN":
		return query.Where(fmt.Sprintf("%s IN ?", condition.Field), condition.Value)
	case "NOT IN":
		return query.Where(fmt.Sprintf("%s NOT IN ?", condition.Field), condition.Value)
	case "LIKE":
		return query.Where(fmt.Sprintf("%s LIKE ?", condition.Field), condition.Value)
	case "ILIKE":
		return query.Where(fmt.Sprintf("%s ILIKE ?", condition.Field), condition.Value)
	case "IS NULL":
		return query.Where(fmt.Sprintf("%s IS NULL", condition.Field))
	case "IS NOT NULL":
		return query.Where(fmt.Sprintf("%s IS NOT NULL", condition.Field))
	default:
		// Default to equality
		return query.Where(fmt.Sprintf("%s = ?", condition.Field), condition.Value)
	}
}

// applyPagination applies pagination to a GORM query
func (r *BaseRepository[T]) applyPagination(query *gorm.DB, pagination Pagination) *gorm.DB {
	// Calculate offset and limit
	offset := pagination.Offset
	limit := pagination.Limit

	// Use page and page_size if offset and limit are not provided
	if offset == 0 && limit == 0 {
		if pagination.Page > 0 && pagination.PageSize > 0 {
			offset = (pagination.Page - 1) * pagination.PageSize
			limit = pagination.PageSize
		}
	}

	// Apply default limit if none specified
	if limit == 0 {
		limit = 20 // Default page size
	}

	// Apply pagination
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	return query
}

// hasDeletedAtField checks if the model has a DeletedAt field for soft delete
func (r *BaseRepository[T]) hasDeletedAtField() bool {
	t := reflect.TypeOf(*r.model)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Name == "DeletedAt" {
			return true
		}
	}
	return false
}
