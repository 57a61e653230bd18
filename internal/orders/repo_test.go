package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  requester_id TEXT NOT NULL,
  collector_id TEXT,
  forwarded_by_id TEXT,
  order_type TEXT NOT NULL DEFAULT 'material',
  quantity_type TEXT NOT NULL DEFAULT 'small',
  status TEXT NOT NULL DEFAULT 'pending',
  assignment_status TEXT NOT NULL DEFAULT 'unassigned',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL DEFAULT 'INR',
  total_weight_kg REAL NOT NULL DEFAULT 0,
  service_fee_paise INTEGER NOT NULL DEFAULT 0,
  total_amount_paise INTEGER NOT NULL,
  pickup_address TEXT NOT NULL,
  pickup_location TEXT,
  notes TEXT,
  cancel_reason TEXT,
  assigned_at DATETIME,
  accepted_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  category TEXT NOT NULL,
  weight_kg REAL NOT NULL,
  rate_paise INTEGER NOT NULL,
  total_paise INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderAssignments := `
CREATE TABLE IF NOT EXISTS order_assignments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  collector_id TEXT NOT NULL,
  status TEXT NOT NULL,
  note TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLineItems).Error)
	require.NoError(t, db.Exec(orderAssignments).Error)
	return db
}

func insertOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:               uuid.New(),
		RequesterID:      uuid.New(),
		OrderType:        enums.OrderTypeMaterial,
		QuantityType:     enums.QuantityTypeSmall,
		Status:           enums.OrderStatusPending,
		AssignmentStatus: enums.AssignmentStatusUnassigned,
		PaymentStatus:    enums.PaymentStatusPending,
		Currency:         enums.CurrencyINR,
		TotalAmountPaise: 50000,
		PickupAddress:    "12 MG Road, Bengaluru",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func orderIDs(list *OrderList) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(list.Orders))
	for _, order := range list.Orders {
		ids[order.ID] = true
	}
	return ids
}

func TestClaimSingleWinner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := insertOrder(t, db, nil)
	collectorA := uuid.New()
	collectorB := uuid.New()

	won, err := repo.Claim(ctx, order.ID, collectorA)
	require.NoError(t, err)
	assert.True(t, won)

	// The losing claimant matches zero rows.
	won, err = repo.Claim(ctx, order.ID, collectorB)
	require.NoError(t, err)
	assert.False(t, won)

	claimed, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, claimed.Status)
	assert.Equal(t, enums.AssignmentStatusAccepted, claimed.AssignmentStatus)
	require.NotNil(t, claimed.CollectorID)
	assert.Equal(t, collectorA, *claimed.CollectorID)
	assert.NotNil(t, claimed.AssignedAt)
	assert.NotNil(t, claimed.AcceptedAt)
}

func TestClaimSkipsNonPendingOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := insertOrder(t, db, func(o *models.Order) {
		o.Status = enums.OrderStatusCancelled
	})

	won, err := repo.Claim(ctx, order.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, won)
}

func TestForwardReleasesHold(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	holder := uuid.New()
	order := insertOrder(t, db, func(o *models.Order) {
		now := time.Now()
		o.Status = enums.OrderStatusConfirmed
		o.AssignmentStatus = enums.AssignmentStatusAccepted
		o.CollectorID = &holder
		o.AssignedAt = &now
		o.AcceptedAt = &now
	})

	// A stale holder cannot forward.
	moved, err := repo.Forward(ctx, order.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = repo.Forward(ctx, order.ID, holder)
	require.NoError(t, err)
	assert.True(t, moved)

	forwarded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, forwarded.Status)
	assert.Equal(t, enums.AssignmentStatusUnassigned, forwarded.AssignmentStatus)
	assert.Equal(t, enums.QuantityTypeLarge, forwarded.QuantityType)
	assert.Nil(t, forwarded.CollectorID)
	require.NotNil(t, forwarded.ForwardedByID)
	assert.Equal(t, holder, *forwarded.ForwardedByID)
	assert.Nil(t, forwarded.AssignedAt)
	assert.Nil(t, forwarded.AcceptedAt)
}

func TestUpdateStatusGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	holder := uuid.New()
	order := insertOrder(t, db, func(o *models.Order) {
		o.Status = enums.OrderStatusConfirmed
		o.CollectorID = &holder
	})

	stranger := uuid.New()
	moved, err := repo.UpdateStatusGuarded(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusConfirmed}, &stranger,
		map[string]any{"status": enums.OrderStatusInProgress, "updated_at": time.Now()})
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = repo.UpdateStatusGuarded(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusConfirmed}, &holder,
		map[string]any{"status": enums.OrderStatusInProgress, "updated_at": time.Now()})
	require.NoError(t, err)
	assert.True(t, moved)

	// The source state no longer matches.
	moved, err = repo.UpdateStatusGuarded(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusConfirmed}, &holder,
		map[string]any{"status": enums.OrderStatusInProgress, "updated_at": time.Now()})
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestListAvailableTierVisibility(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	forwarder := uuid.New()
	other := uuid.New()

	small := insertOrder(t, db, nil)
	large := insertOrder(t, db, func(o *models.Order) {
		o.QuantityType = enums.QuantityTypeLarge
	})
	forwarded := insertOrder(t, db, func(o *models.Order) {
		o.QuantityType = enums.QuantityTypeLarge
		o.ForwardedByID = &forwarder
	})

	smallTier, err := repo.ListAvailable(ctx, enums.QuantityTypeSmall, other, pagination.Params{Limit: pagination.MaxLimit})
	require.NoError(t, err)
	ids := orderIDs(smallTier)
	assert.True(t, ids[small.ID])
	assert.False(t, ids[large.ID])
	assert.False(t, ids[forwarded.ID])

	largeTier, err := repo.ListAvailable(ctx, enums.QuantityTypeLarge, other, pagination.Params{Limit: pagination.MaxLimit})
	require.NoError(t, err)
	ids = orderIDs(largeTier)
	assert.False(t, ids[small.ID])
	assert.True(t, ids[large.ID])
	assert.True(t, ids[forwarded.ID])

	// The forwarding collector never sees its own forward again.
	forwarderView, err := repo.ListAvailable(ctx, enums.QuantityTypeLarge, forwarder, pagination.Params{Limit: pagination.MaxLimit})
	require.NoError(t, err)
	ids = orderIDs(forwarderView)
	assert.True(t, ids[large.ID])
	assert.False(t, ids[forwarded.ID])
}

func TestListByRequesterPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	requesterID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		insertOrder(t, db, func(o *models.Order) {
			o.RequesterID = requesterID
			o.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			o.UpdatedAt = o.CreatedAt
		})
	}

	first, err := repo.ListByRequester(ctx, requesterID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListByRequester(ctx, requesterID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextCursor)

	// Newest first, no overlap across pages.
	assert.True(t, first.Orders[0].CreatedAt.After(first.Orders[1].CreatedAt))
	assert.NotEqual(t, first.Orders[1].ID, second.Orders[0].ID)
}
