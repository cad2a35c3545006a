package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillworks/tillworks-backend/api/middleware"
	"github.com/tillworks/tillworks-backend/api/responses"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

// requireActor pulls the acting context seeded by the auth middleware,
// writing the 401 itself when it is missing.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (actor.Actor, bool) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting context missing"))
		return actor.Actor{}, false
	}
	return act, true
}

func parseDecimalField(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "field must be a decimal string").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
