package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/internal/wallet"
	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
	"github.com/scraploop/scraploop-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// walletLedger is the slice of the wallet service the order lifecycle needs:
// balance gates before claims and the settlement legs inside the completion
// transaction.
type walletLedger interface {
	ValidateBalance(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, minimumPaise int64) error
	SettleOrderTx(ctx context.Context, tx *gorm.DB, input wallet.SettlementInput) (*wallet.Settlement, error)
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	Accept(ctx context.Context, orderID, collectorID uuid.UUID) (*models.Order, error)
	Forward(ctx context.Context, input ForwardInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	ListAvailable(ctx context.Context, collectorID uuid.UUID, tier enums.QuantityType, params pagination.Params) (*OrderList, error)
	ListMine(ctx context.Context, requesterID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAssigned(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListForwarded(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	wallet    walletLedger
	ordersCfg config.OrdersConfig
	walletCfg config.WalletConfig
}

// NewService builds an order lifecycle service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, walletSvc walletLedger, ordersCfg config.OrdersConfig, walletCfg config.WalletConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		wallet:    walletSvc,
		ordersCfg: ordersCfg,
		walletCfg: walletCfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "requester identity missing")
	}
	if !input.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if strings.TrimSpace(input.PickupAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup address required")
	}

	order := &models.Order{
		RequesterID:   input.RequesterID,
		OrderType:     input.OrderType,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Currency:      enums.CurrencyINR,
		PickupAddress: strings.TrimSpace(input.PickupAddress),
		Notes:         input.Notes,
	}
	order.AssignmentStatus = enums.AssignmentStatusUnassigned
	order.PickupLocation = pickupPoint(input.PickupLat, input.PickupLng)

	switch input.OrderType {
	case enums.OrderTypeMaterial:
		if len(input.Items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material order requires at least one line item")
		}
		if input.ServiceFeePaise != 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material order must not carry a service fee")
		}
		items, totalWeight, totalAmount, err := buildLineItems(input.Items)
		if err != nil {
			return nil, err
		}
		order.Items = items
		order.TotalWeightKG = totalWeight
		order.TotalAmountPaise = totalAmount
	case enums.OrderTypeService:
		if len(input.Items) != 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service order must not carry line items")
		}
		if input.ServiceFeePaise <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service order requires a positive service fee")
		}
		order.ServiceFeePaise = input.ServiceFeePaise
		order.TotalAmountPaise = input.ServiceFeePaise

		// The requester foots the bill at completion, so gate creation on a
		// working balance.
		if err := s.wallet.ValidateBalance(ctx, enums.OwnerTypeRequester, input.RequesterID, s.walletCfg.ServiceOrderMinBalancePaise); err != nil {
			return nil, err
		}
	}

	order.QuantityType = s.classifyQuantity(input.QuantityType, order.TotalWeightKG)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         requesterActor(input.RequesterID),
			Data: OrderCreatedEvent{
				OrderID:          order.ID,
				RequesterID:      order.RequesterID,
				OrderType:        order.OrderType,
				QuantityType:     order.QuantityType,
				TotalAmountPaise: order.TotalAmountPaise,
				TotalWeightKG:    order.TotalWeightKG,
				PickupAddress:    order.PickupAddress,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(order, actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order not visible to caller")
	}
	return order, nil
}

// Accept claims a pending order for the collector. The claim itself is a
// single predicated update; losing claimants re-read the row to distinguish a
// retry of their own earlier win from a genuine conflict.
func (s *service) Accept(ctx context.Context, orderID, collectorID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if collectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}

	if err := s.wallet.ValidateBalance(ctx, enums.OwnerTypeCollector, collectorID, s.walletCfg.CollectorMinBalancePaise); err != nil {
		return nil, err
	}

	var claimed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		won, err := repo.Claim(ctx, orderID, collectorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order")
		}
		if !won {
			return nil
		}
		claimed = true

		note := "claimed"
		if err := repo.CreateAssignment(ctx, &models.OrderAssignment{
			OrderID:     orderID,
			CollectorID: collectorID,
			Status:      enums.AssignmentStatusAccepted,
			Note:        &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record assignment")
		}

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderClaimed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Actor:         collectorActor(collectorID),
			Data: OrderClaimedEvent{
				OrderID:     orderID,
				RequesterID: order.RequesterID,
				CollectorID: collectorID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if claimed {
		return order, nil
	}

	// Replays of a claim this collector already won succeed idempotently.
	if order.CollectorID != nil && *order.CollectorID == collectorID && !order.Status.IsTerminal() {
		return order, nil
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer claimable")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already claimed by another collector")
}

// Forward escalates a held order to the large tier and releases the hold.
func (s *service) Forward(ctx context.Context, input ForwardInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CollectorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.CollectorID == nil || *order.CollectorID != input.CollectorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the holding collector can forward")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized")
		}

		forwarded, err := repo.Forward(ctx, input.OrderID, input.CollectorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "forward order")
		}
		if !forwarded {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be forwarded in current state")
		}

		note := "forwarded to large tier"
		if input.Note != nil {
			note = *input.Note
		}
		if err := repo.CreateAssignment(ctx, &models.OrderAssignment{
			OrderID:     input.OrderID,
			CollectorID: input.CollectorID,
			Status:      enums.AssignmentStatusRejected,
			Note:        &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record forward")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderForwarded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   input.OrderID,
			Version:       1,
			Actor:         collectorActor(input.CollectorID),
			Data: OrderForwardedEvent{
				OrderID:       input.OrderID,
				RequesterID:   order.RequesterID,
				ForwardedByID: input.CollectorID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, s.repo, input.OrderID)
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	switch input.Target {
	case enums.OrderStatusCancelled:
		return s.Cancel(ctx, CancelInput{OrderID: input.OrderID, Actor: input.Actor})
	case enums.OrderStatusInProgress:
		return s.markInProgress(ctx, input)
	case enums.OrderStatusCompleted:
		return s.complete(ctx, input)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status cannot be set directly")
	}
}

func (s *service) markInProgress(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		collectorID, err := transitionHolder(order, input.Actor)
		if err != nil {
			return err
		}
		moved, err := repo.UpdateStatusGuarded(ctx, input.OrderID,
			[]enums.OrderStatus{enums.OrderStatusConfirmed},
			&collectorID,
			map[string]any{"status": enums.OrderStatusInProgress, "updated_at": time.Now()},
		)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot move to in_progress")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   input.OrderID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: OrderStatusChangedEvent{
				OrderID:     input.OrderID,
				RequesterID: order.RequesterID,
				CollectorID: &collectorID,
				From:        order.Status,
				To:          enums.OrderStatusInProgress,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, s.repo, input.OrderID)
}

// complete runs the terminal write and every settlement leg in one
// transaction: either the order flips to completed with all money moved, or
// nothing changes.
func (s *service) complete(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized")
		}
		collectorID, err := transitionHolder(order, input.Actor)
		if err != nil {
			return err
		}

		now := time.Now()
		moved, err := repo.UpdateStatusGuarded(ctx, input.OrderID,
			[]enums.OrderStatus{enums.OrderStatusConfirmed, enums.OrderStatusInProgress},
			&collectorID,
			map[string]any{
				"status":         enums.OrderStatusCompleted,
				"payment_status": enums.PaymentStatusCompleted,
				"completed_at":   now,
				"updated_at":     now,
			},
		)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be completed in current state")
		}

		settlement, err := s.wallet.SettleOrderTx(ctx, tx, wallet.SettlementInput{
			OrderID:          order.ID,
			OrderType:        order.OrderType,
			RequesterID:      order.RequesterID,
			CollectorID:      collectorID,
			TotalAmountPaise: order.TotalAmountPaise,
		})
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: OrderCompletedEvent{
				OrderID:          order.ID,
				RequesterID:      order.RequesterID,
				CollectorID:      collectorID,
				OrderType:        order.OrderType,
				TotalAmountPaise: order.TotalAmountPaise,
				CommissionPaise:  settlement.CommissionPaise,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, s.repo, input.OrderID)
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized")
		}
		if !canCancel(order, input.Actor) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "caller cannot cancel this order")
		}

		now := time.Now()
		moved, err := repo.UpdateStatusGuarded(ctx, input.OrderID,
			[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusConfirmed, enums.OrderStatusInProgress},
			nil,
			map[string]any{
				"status":            enums.OrderStatusCancelled,
				"assignment_status": enums.AssignmentStatusUnassigned,
				"collector_id":      nil,
				"cancel_reason":     input.Reason,
				"cancelled_at":      now,
				"updated_at":        now,
			},
		)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled in current state")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   input.OrderID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: OrderCancelledEvent{
				OrderID:     input.OrderID,
				RequesterID: order.RequesterID,
				CollectorID: order.CollectorID,
				Reason:      input.Reason,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, s.repo, input.OrderID)
}

func (s *service) ListAvailable(ctx context.Context, collectorID uuid.UUID, tier enums.QuantityType, params pagination.Params) (*OrderList, error) {
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier")
	}
	list, err := s.repo.ListAvailable(ctx, tier, collectorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available orders")
	}
	return list, nil
}

func (s *service) ListMine(ctx context.Context, requesterID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListByRequester(ctx, requesterID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requester orders")
	}
	return list, nil
}

func (s *service) ListAssigned(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListAssignedToCollector(ctx, collectorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}
	return list, nil
}

func (s *service) ListForwarded(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListForwardedByCollector(ctx, collectorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list forwarded orders")
	}
	return list, nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) classifyQuantity(explicit *enums.QuantityType, totalWeightKG float64) enums.QuantityType {
	if explicit != nil && explicit.IsValid() {
		return *explicit
	}
	if totalWeightKG >= s.ordersCfg.LargeWeightThresholdKG {
		return enums.QuantityTypeLarge
	}
	return enums.QuantityTypeSmall
}

func buildLineItems(inputs []LineItemInput) ([]models.OrderLineItem, float64, int64, error) {
	items := make([]models.OrderLineItem, 0, len(inputs))
	var totalWeight float64
	var totalAmount int64
	for _, item := range inputs {
		if strings.TrimSpace(item.Category) == "" {
			return nil, 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "line item category required")
		}
		if item.WeightKG <= 0 {
			return nil, 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "line item weight must be positive")
		}
		if item.RatePaise <= 0 {
			return nil, 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "line item rate must be positive")
		}
		total := decimal.NewFromFloat(item.WeightKG).
			Mul(decimal.NewFromInt(item.RatePaise)).
			Round(0).
			IntPart()
		items = append(items, models.OrderLineItem{
			Category:   strings.TrimSpace(item.Category),
			WeightKG:   item.WeightKG,
			RatePaise:  item.RatePaise,
			TotalPaise: total,
		})
		totalWeight += item.WeightKG
		totalAmount += total
	}
	if totalAmount <= 0 {
		return nil, 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}
	return items, totalWeight, totalAmount, nil
}

// pickupPoint derives the stored geography point from raw coordinates.
func pickupPoint(lat, lng *float64) *types.GeographyPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &types.GeographyPoint{Lat: *lat, Lng: *lng}
}

func canView(order *models.Order, actor Actor) bool {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return true
	case enums.ActorRoleRequester:
		return order.RequesterID == actor.UserID
	case enums.ActorRoleCollector:
		if order.CollectorID != nil && *order.CollectorID == actor.UserID {
			return true
		}
		if order.ForwardedByID != nil && *order.ForwardedByID == actor.UserID {
			return true
		}
		// Unclaimed orders are browsable by any collector.
		return order.Status == enums.OrderStatusPending
	default:
		return false
	}
}

// transitionHolder authorizes an in_progress/completed transition and
// resolves the collector the guarded update and settlement run against. The
// requester may drive their own order forward; a collector only an order
// they hold.
func transitionHolder(order *models.Order, actor Actor) (uuid.UUID, error) {
	if order.CollectorID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no collector assigned")
	}
	switch actor.Role {
	case enums.ActorRoleAdmin:
	case enums.ActorRoleRequester:
		if order.RequesterID != actor.UserID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller cannot update this order")
		}
	case enums.ActorRoleCollector:
		if *order.CollectorID != actor.UserID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller cannot update this order")
		}
	default:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller cannot update this order")
	}
	return *order.CollectorID, nil
}

func canCancel(order *models.Order, actor Actor) bool {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return true
	case enums.ActorRoleRequester:
		return order.RequesterID == actor.UserID
	case enums.ActorRoleCollector:
		return order.CollectorID != nil && *order.CollectorID == actor.UserID
	default:
		return false
	}
}

func requesterActor(id uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: id, Role: enums.ActorRoleRequester.String()}
}

func collectorActor(id uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: id, Role: enums.ActorRoleCollector.String()}
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()}
}
