package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateAssignment(ctx context.Context, assignment *models.OrderAssignment) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Claim(ctx context.Context, orderID, collectorID uuid.UUID) (bool, error)
	Forward(ctx context.Context, orderID, collectorID uuid.UUID) (bool, error)
	UpdateStatusGuarded(ctx context.Context, orderID uuid.UUID, allowedFrom []enums.OrderStatus, collectorID *uuid.UUID, updates map[string]any) (bool, error)
	ListAvailable(ctx context.Context, tier enums.QuantityType, collectorID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAssignedToCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListForwardedByCollector(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error)
}
