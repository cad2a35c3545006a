package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tillworks/tillworks-backend/api/responses"
	"github.com/tillworks/tillworks-backend/api/validators"
	"github.com/tillworks/tillworks-backend/internal/orders"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
	"github.com/tillworks/tillworks-backend/pkg/pagination"
)

type addItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Qty       string `json:"qty" validate:"required"`
}

type discountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type setCustomerRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
}

type captureLineItem struct {
	ProductID string   `json:"product_id" validate:"required,uuid"`
	VariantID *string  `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Qty       string   `json:"qty" validate:"required"`
	OptionIDs []string `json:"option_ids,omitempty" validate:"omitempty,dive,uuid"`
	Note      *string  `json:"note,omitempty"`
}

type captureRequest struct {
	Method    string            `json:"method" validate:"required,oneof=cash card qr"`
	LineItems []captureLineItem `json:"line_items,omitempty" validate:"omitempty,dive"`
}

// OrderCreate opens an empty draft for the acting cashier.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		result, err := svc.CreateDraft(r.Context(), act)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderResultPayload(result))
	}
}

// OrderList returns a store-scoped page of orders for the register UI.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.ListInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			input.Status = &status
		}

		list, err := svc.List(r.Context(), act, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := struct {
			Orders     []orderPayload `json:"orders"`
			NextCursor string         `json:"next_cursor,omitempty"`
		}{
			Orders:     make([]orderPayload, 0, len(list.Orders)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Orders {
			payload.Orders = append(payload.Orders, toOrderPayload(&list.Orders[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}

// OrderDetail returns one order with its recomputed breakdown.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), act, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

// OrderAddItem merges a variant quantity into the draft.
func OrderAddItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
			return
		}
		qty, err := parseDecimalField(req.Qty, "qty")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), act, orderID, variantID, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

// OrderCheckout freezes the draft totals ahead of payment.
func OrderCheckout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), act, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

// OrderDiscount sets the manual order-level discount.
func OrderDiscount(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req discountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseDecimalField(req.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApplyDiscount(r.Context(), act, orderID, amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

// OrderCustomer links a customer to the order for loyalty accrual.
func OrderCustomer(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setCustomerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		result, err := svc.SetCustomer(r.Context(), act, orderID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

// OrderCapture takes payment, optionally replacing the lines first.
func OrderCapture(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req captureRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := orders.CaptureInput{OrderID: orderID, Method: method}
		if req.LineItems != nil {
			input.LineItems = make([]orders.LineItemInput, 0, len(req.LineItems))
			for _, line := range req.LineItems {
				converted, convErr := toLineItemInput(line)
				if convErr != nil {
					responses.WriteError(r.Context(), logg, w, convErr)
					return
				}
				input.LineItems = append(input.LineItems, converted)
			}
		}

		result, err := svc.Capture(r.Context(), act, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

// OrderRefund reverses a paid order in full.
func OrderRefund(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refund(r.Context(), act, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResultPayload(result))
	}
}

func toLineItemInput(line captureLineItem) (orders.LineItemInput, error) {
	productID, err := uuid.Parse(line.ProductID)
	if err != nil {
		return orders.LineItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	qty, err := parseDecimalField(line.Qty, "qty")
	if err != nil {
		return orders.LineItemInput{}, err
	}

	input := orders.LineItemInput{
		ProductID: productID,
		Qty:       qty,
		Note:      line.Note,
	}
	if line.VariantID != nil {
		variantID, parseErr := uuid.Parse(*line.VariantID)
		if parseErr != nil {
			return orders.LineItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid variant id")
		}
		input.VariantID = &variantID
	}
	for _, raw := range line.OptionIDs {
		optionID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return orders.LineItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid option id")
		}
		input.OptionIDs = append(input.OptionIDs, optionID)
	}
	return input, nil
}
