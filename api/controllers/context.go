package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/api/middleware"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	pkgerrors "github.com/scraploop/scraploop-backend/pkg/errors"
)

// callerFromRequest pulls the authenticated identity out of the request context.
func callerFromRequest(r *http.Request) (uuid.UUID, enums.ActorRole, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid caller identity")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return userID, role, nil
}

// walletOwnerFromRequest resolves the caller into a wallet owner. Admins do
// not carry wallets.
func walletOwnerFromRequest(r *http.Request) (enums.OwnerType, uuid.UUID, error) {
	userID, role, err := callerFromRequest(r)
	if err != nil {
		return "", uuid.Nil, err
	}
	ownerType, ok := role.OwnerType()
	if !ok {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "role has no wallet")
	}
	return ownerType, userID, nil
}
