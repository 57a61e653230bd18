package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
)

// Service is the in-app notification surface: cursor-paged listing plus
// read receipts.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, ownerType enums.OwnerType, ownerID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (int64, error)
}

type ListParams struct {
	OwnerType  enums.OwnerType
	OwnerID    uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult carries one page and the opaque cursor for the next, empty
// when this is the last page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func checkOwner(ownerType enums.OwnerType, ownerID uuid.UUID) error {
	if !ownerType.IsValid() || ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification owner required")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if err := checkOwner(params.OwnerType, params.OwnerID); err != nil {
		return nil, err
	}

	query := listNotificationsParams{
		OwnerType:  params.OwnerType,
		OwnerID:    params.OwnerID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, ownerType enums.OwnerType, ownerID, notificationID uuid.UUID) error {
	if err := checkOwner(ownerType, ownerID); err != nil {
		return err
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, ownerType, ownerID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (int64, error) {
	if err := checkOwner(ownerType, ownerID); err != nil {
		return 0, err
	}

	count, err := s.repo.MarkAllRead(ctx, ownerType, ownerID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
