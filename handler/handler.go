package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/auth"
	"storefront-cart/model"
	"storefront-cart/service"
)

// Identity is the login surface the handler drives.
type Identity interface {
	Login(email, password string) error
	Logout()
	Current() string
	IsAuthenticated() bool
}

// Handler is the HTTP layer that talks to service.CartEngine
type Handler struct {
	cart service.CartEngine
	id   Identity
	log  *zap.Logger
}

// NewHandler returns a Handler instance
func NewHandler(c service.CartEngine, id Identity, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{cart: c, id: id, log: log}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Cart
	r.HandleFunc("/cart", h.GetCart).Methods("GET")
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/quantity", h.UpdateQuantity).Methods("POST")
	r.HandleFunc("/cart/clear", h.ClearCart).Methods("POST")
	r.HandleFunc("/cart/shipping", h.SetShipping).Methods("POST")
	r.HandleFunc("/cart/destination", h.SetDestination).Methods("POST")

	// Checkout
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")
	r.HandleFunc("/orders", h.ListOrders).Methods("GET")

	// Session
	r.HandleFunc("/session", h.GetSession).Methods("GET")
	r.HandleFunc("/session/login", h.Login).Methods("POST")
	r.HandleFunc("/session/logout", h.Logout).Methods("POST")
}

// --- request / response shapes ---
type addItemReq struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Image     string          `json:"image,omitempty"`
}

type itemKeyReq struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity,omitempty"` // only for /cart/quantity
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// --- Handler ---

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// AddToCart handles POST /cart/add
// body: { "product_id": "A", "name": "...", "price": 20, "quantity": 2, "size": "M" }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	if req.Price.IsNegative() {
		writeErr(w, http.StatusBadRequest, "price must be >= 0")
		return
	}
	h.cart.AddItem(model.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
		Image:     req.Image,
	})
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// RemoveFromCart handles POST /cart/remove
// body: { "product_id": "A", "size": "M" }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req itemKeyReq
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return
	}
	h.cart.RemoveItem(req.ProductID, req.Size, req.Color)
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// UpdateQuantity handles POST /cart/quantity; quantity < 1 removes the entry.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req itemKeyReq
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return
	}
	h.cart.SetQuantity(req.ProductID, req.Size, req.Color, req.Quantity)
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// ClearCart handles POST /cart/clear
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// SetShipping handles POST /cart/shipping
// body: { "method": "Express" }
func (h *Handler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if !decode(w, r, &req) {
		return
	}
	m, err := model.ParseShippingMethod(req.Method)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	h.cart.SetShippingMethod(m)
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// SetDestination handles POST /cart/destination
// body: { "destination": "United States" }
func (h *Handler) SetDestination(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Destination string `json:"destination"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := model.ParseDestination(req.Destination)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	h.cart.SetDestination(d)
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// Checkout handles POST /checkout/order
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	// the engine accepts empty checkouts; the storefront does not
	if h.cart.Count() == 0 {
		writeErr(w, http.StatusBadRequest, "cart empty")
		return
	}
	ord := h.cart.Checkout()
	writeJSON(w, http.StatusCreated, ord)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"identity": h.id.Current(),
		"orders":   h.cart.Orders(),
	})
}

// GetSession handles GET /session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": h.id.IsAuthenticated(),
		"email":         h.id.Current(),
	})
}

// Login handles POST /session/login
// body: { "email": "a@x.com", "password": "..." }
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.id.Login(req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrEmailRequired) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("login", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetSession(w, r)
}

// Logout handles POST /session/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.id.Logout()
	h.GetSession(w, r)
}
