package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/client"
	"github.com/noah-isme/checkout-api/internal/common"
	"github.com/noah-isme/checkout-api/internal/lock"
	"github.com/noah-isme/checkout-api/internal/pricing"
)

type finalizeRequest struct {
	CartID string `json:"cartId" validate:"required,uuid4"`
}

// Handler exposes checkout over HTTP. The client identity comes from the
// authenticated request context, never from the payload.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
	Locks    *lock.Locker
}

// Finalize handles POST /v1/checkout.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	rawClientID, ok := common.ClientIDFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	clientID, err := uuid.Parse(rawClientID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid client id", nil)
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "cartId must be a valid uuid", nil)
			return
		}
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}

	if h.Locks != nil {
		release, err := h.Locks.Try(r.Context(), "checkout:cart:"+cartID.String())
		if err != nil {
			if errors.Is(err, lock.ErrHeld) {
				common.JSONError(w, http.StatusConflict, "CHECKOUT_IN_PROGRESS", "a checkout for this cart is already running", nil)
				return
			}
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "lock acquisition failed", nil)
			return
		}
		defer release()
	}

	out, err := h.Service.FinalizeCheckout(r.Context(), cartID, clientID)
	if err != nil {
		writeFinalizeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, out)
}

func writeFinalizeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, client.ErrClientNotFound):
		common.JSONError(w, http.StatusNotFound, "CLIENT_NOT_FOUND", "client not found", nil)
	case errors.Is(err, cart.ErrCartNotFound):
		common.JSONError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
	case errors.Is(err, pricing.ErrInvalidCart), errors.Is(err, pricing.ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_CART", err.Error(), nil)
	case errors.Is(err, ErrItemsUnavailable):
		common.JSONError(w, http.StatusConflict, "ITEMS_UNAVAILABLE", "one or more items are unavailable", nil)
	case errors.Is(err, ErrPaymentNotAuthorized):
		common.JSONError(w, http.StatusConflict, "PAYMENT_DECLINED", "payment was not authorized", nil)
	case errors.Is(err, ErrStockCommitFailed):
		common.JSONError(w, http.StatusConflict, "STOCK_COMMIT_FAILED", "stock could not be committed, payment was cancelled", nil)
	default:
		if appErr, ok := common.AsAppError(err); ok {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
	}
}
