package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tillworks/tillworks-backend/api/responses"
	"github.com/tillworks/tillworks-backend/api/validators"
	"github.com/tillworks/tillworks-backend/internal/shifts"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

type openShiftRequest struct {
	RegisterID   string `json:"register_id" validate:"required,uuid"`
	OpeningFloat string `json:"opening_float" validate:"required"`
}

type closeShiftRequest struct {
	ClosingCash string `json:"closing_cash" validate:"required"`
}

type moveCashRequest struct {
	Type   string  `json:"type" validate:"required,oneof=cash_in cash_out"`
	Amount string  `json:"amount" validate:"required"`
	Reason *string `json:"reason,omitempty"`
}

// ShiftOpen starts a drawer session on a register.
func ShiftOpen(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var req openShiftRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		registerID, err := uuid.Parse(req.RegisterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid register id"))
			return
		}
		openingFloat, err := parseDecimalField(req.OpeningFloat, "opening_float")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.Open(r.Context(), act, registerID, openingFloat)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toShiftPayload(shift))
	}
}

// ShiftClose ends the shift and returns its reconciliation report.
func ShiftClose(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		shiftID, err := validators.ParsePathUUID(chi.URLParam(r, "shiftID"), "shiftID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req closeShiftRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		closingCash, err := parseDecimalField(req.ClosingCash, "closing_cash")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, report, err := svc.Close(r.Context(), act, shiftID, closingCash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"shift":  toShiftPayload(shift),
			"report": report,
		})
	}
}

// ShiftMoveCash records a drawer pay-in or pay-out.
func ShiftMoveCash(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		shiftID, err := validators.ParsePathUUID(chi.URLParam(r, "shiftID"), "shiftID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req moveCashRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movementType, err := enums.ParseCashMovementType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}
		amount, err := parseDecimalField(req.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.MoveCash(r.Context(), act, shifts.MoveCashInput{
			ShiftID: shiftID,
			Type:    movementType,
			Amount:  amount,
			Reason:  req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCashMovementPayload(*movement))
	}
}

// ShiftAttachOrder binds an order to the shift exactly once.
func ShiftAttachOrder(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		shiftID, err := validators.ParsePathUUID(chi.URLParam(r, "shiftID"), "shiftID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AttachOrder(r.Context(), act, orderID, shiftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderPayload(order))
	}
}

// ShiftReport rebuilds the reconciliation report for any shift.
func ShiftReport(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		shiftID, err := validators.ParsePathUUID(chi.URLParam(r, "shiftID"), "shiftID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.BuildReport(r.Context(), act, shiftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
