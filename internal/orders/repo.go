package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *models.OrderAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Assignments").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Claim is the single predicated write that resolves concurrent accepts: only
// one update can match the unassigned predicate, every other claimant sees
// zero rows affected.
func (r *repository) Claim(ctx context.Context, orderID, collectorID uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("status = ?", enums.OrderStatusPending).
		Where("assignment_status = ? AND collector_id IS NULL", enums.AssignmentStatusUnassigned).
		Updates(map[string]any{
			"collector_id":      collectorID,
			"status":            enums.OrderStatusConfirmed,
			"assignment_status": enums.AssignmentStatusAccepted,
			"assigned_at":       now,
			"accepted_at":       now,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Forward releases a held order back to pending and flips it to the large
// tier. The collector predicate keeps a stale holder from forwarding an order
// it no longer owns.
func (r *repository) Forward(ctx context.Context, orderID, collectorID uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("collector_id = ?", collectorID).
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusConfirmed, enums.OrderStatusInProgress}).
		Updates(map[string]any{
			"collector_id":      nil,
			"forwarded_by_id":   collectorID,
			"quantity_type":     enums.QuantityTypeLarge,
			"status":            enums.OrderStatusPending,
			"assignment_status": enums.AssignmentStatusUnassigned,
			"assigned_at":       nil,
			"accepted_at":       nil,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStatusGuarded applies the updates only while the order still sits in
// one of the allowed source states (and, when given, is still held by the
// collector).
func (r *repository) UpdateStatusGuarded(ctx context.Context, orderID uuid.UUID, allowedFrom []enums.OrderStatus, collectorID *uuid.UUID, updates map[string]any) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("status IN ?", allowedFrom)
	if collectorID != nil {
		query = query.Where("collector_id = ?", *collectorID)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListAvailable returns claimable orders for one collector tier. Small tier
// sees small, never-forwarded orders; large tier sees large or forwarded
// orders, excluding the collector's own forwards.
func (r *repository) ListAvailable(ctx context.Context, tier enums.QuantityType, collectorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusPending).
		Where("assignment_status = ? AND collector_id IS NULL", enums.AssignmentStatusUnassigned)

	switch tier {
	case enums.QuantityTypeSmall:
		query = query.
			Where("quantity_type = ?", enums.QuantityTypeSmall).
			Where("forwarded_by_id IS NULL")
	case enums.QuantityTypeLarge:
		query = query.
			Where("quantity_type = ? OR forwarded_by_id IS NOT NULL", enums.QuantityTypeLarge).
			Where("forwarded_by_id IS NULL OR forwarded_by_id <> ?", collectorID)
	}

	return r.paginate(ctx, query, params)
}

func (r *repository) ListByRequester(ctx context.Context, requesterID uuid.UUID, params pagination.Params) (*OrderList, error) {
	query := r.db.WithContext(ctx).Where("requester_id = ?", requesterID)
	return r.paginate(ctx, query, params)
}

func (r *repository) ListAssignedToCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Where("collector_id = ?", collectorID).
		Where("status NOT IN ?", []enums.OrderStatus{enums.OrderStatusCancelled})
	return r.paginate(ctx, query, params)
}

func (r *repository) ListForwardedByCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	query := r.db.WithContext(ctx).Where("forwarded_by_id = ?", collectorID)
	return r.paginate(ctx, query, params)
}

func (r *repository) paginate(ctx context.Context, query *gorm.DB, params pagination.Params) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	err = query.
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &OrderList{Orders: rows, NextCursor: next}, nil
}
