package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/checkout-api/internal/client"
	"github.com/noah-isme/checkout-api/internal/common"
)

// OwnerLookup resolves the authenticated client before cart operations.
type OwnerLookup interface {
	Get(ctx context.Context, id uuid.UUID) (client.Client, error)
}

// CartStore is the persistence surface the handlers need.
type CartStore interface {
	Create(ctx context.Context, owner client.Client) (Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int32) error
	Get(ctx context.Context, cartID uuid.UUID, owner client.Client) (*Cart, error)
}

// Handler exposes cart management over HTTP. All routes require auth; the
// owner is always the authenticated client.
type Handler struct {
	Store    CartStore
	Clients  OwnerLookup
	Validate *validator.Validate
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Qty       int32  `json:"qty" validate:"required,gt=0"`
}

// Create handles POST /v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	c, err := h.Store.Create(r.Context(), owner)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create cart", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

// AddItem handles POST /v1/carts/{cartId}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	cartID, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "productId must be a uuid and qty positive", nil)
			return
		}
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}

	// ownership check before mutating
	if _, err := h.Store.Get(r.Context(), cartID, owner); err != nil {
		h.writeStoreError(w, err)
		return
	}
	if err := h.Store.AddItem(r.Context(), cartID, productID, req.Qty); err != nil {
		h.writeStoreError(w, err)
		return
	}
	common.NoContent(w)
}

// Get handles GET /v1/carts/{cartId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	cartID, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	c, err := h.Store.Get(r.Context(), cartID, owner)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (client.Client, bool) {
	if h.Store == nil || h.Clients == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart handler not configured", nil)
		return client.Client{}, false
	}
	raw, ok := common.ClientIDFromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return client.Client{}, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid client id", nil)
		return client.Client{}, false
	}
	owner, err := h.Clients.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			common.JSONError(w, http.StatusNotFound, "CLIENT_NOT_FOUND", "client not found", nil)
			return client.Client{}, false
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load client", nil)
		return client.Client{}, false
	}
	return owner, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		common.JSONError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_QUANTITY", "quantity must be positive", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}
