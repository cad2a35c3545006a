package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tillworks/tillworks-backend/api/responses"
	"github.com/tillworks/tillworks-backend/api/validators"
	"github.com/tillworks/tillworks-backend/internal/inventory"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

type adjustStockRequest struct {
	VariantID     string  `json:"variant_id" validate:"required,uuid"`
	Delta         string  `json:"delta" validate:"required"`
	Reason        string  `json:"reason" validate:"required"`
	RefType       *string `json:"ref_type,omitempty"`
	RefID         *string `json:"ref_id,omitempty" validate:"omitempty,uuid"`
	Note          *string `json:"note,omitempty"`
	ProductHintID *string `json:"product_hint_id,omitempty" validate:"omitempty,uuid"`
}

// StockOnHand returns the cached balance for one variant.
func StockOnHand(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		variantID, err := validators.ParsePathUUID(chi.URLParam(r, "variantID"), "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		onHand, err := svc.GetOnHand(r.Context(), act, variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"variant_id": variantID,
			"on_hand":    onHand,
		})
	}
}

// StockAdjust appends one ledger entry and returns the new balance.
func StockAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
			return
		}
		delta, err := parseDecimalField(req.Delta, "delta")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseStockReason(req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock reason"))
			return
		}

		input := inventory.AdjustInput{
			VariantID: variantID,
			Delta:     delta,
			Reason:    reason,
			Note:      req.Note,
		}
		if req.RefType != nil {
			input.RefType = req.RefType
		}
		if req.RefID != nil {
			refID, parseErr := uuid.Parse(*req.RefID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid ref id"))
				return
			}
			input.RefID = &refID
		}
		if req.ProductHintID != nil {
			hintID, parseErr := uuid.Parse(*req.ProductHintID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product hint id"))
				return
			}
			input.ProductHintID = &hintID
		}

		onHand, err := svc.Adjust(r.Context(), act, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"variant_id": variantID,
			"on_hand":    onHand,
		})
	}
}
