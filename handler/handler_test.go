package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-cart/auth"
	"storefront-cart/service"
	"storefront-cart/store"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	st := store.NewMemoryStore()
	engine := service.NewEngine(st)
	sess := auth.NewSession(st, engine, nil)

	r := mux.NewRouter()
	NewHandler(engine, sess, nil).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type cartResp struct {
	Identity       string `json:"identity"`
	Count          int    `json:"count"`
	ShippingMethod string `json:"shipping_method"`
	Destination    string `json:"destination"`
	Items          []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
		Size     string `json:"size"`
	} `json:"items"`
	Pricing struct {
		Subtotal     decimal.Decimal `json:"subtotal"`
		ShippingCost decimal.Decimal `json:"shipping_cost"`
		Tax          decimal.Decimal `json:"tax"`
		Total        decimal.Decimal `json:"total"`
	} `json:"pricing"`
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResp {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var c cartResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestAddAndPrice(t *testing.T) {
	r := newRouter(t)

	do(t, r, "POST", "/cart/add", `{"product_id":"J","name":"Jacket","price":"120","quantity":4}`)
	c := decodeCart(t, do(t, r, "GET", "/cart", ""))

	assert.Equal(t, 4, c.Count)
	assert.Equal(t, "Standard", c.ShippingMethod)
	assert.Equal(t, "Canada", c.Destination)
	assert.True(t, c.Pricing.Subtotal.Equal(decimal.NewFromInt(480)))
	assert.True(t, c.Pricing.ShippingCost.Equal(decimal.NewFromInt(10)))
	assert.True(t, c.Pricing.Tax.Equal(decimal.NewFromInt(24)))
	assert.True(t, c.Pricing.Total.Equal(decimal.NewFromInt(514)))
}

func TestAddValidation(t *testing.T) {
	r := newRouter(t)

	cases := []string{
		`not json`,
		`{"name":"x","price":1,"quantity":1}`,
		`{"product_id":"A","price":1,"quantity":0}`,
		`{"product_id":"A","price":-1,"quantity":1}`,
	}
	for _, body := range cases {
		rec := do(t, r, "POST", "/cart/add", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestQuantityAndRemove(t *testing.T) {
	r := newRouter(t)
	do(t, r, "POST", "/cart/add", `{"product_id":"A","price":10,"quantity":1,"size":"S"}`)
	do(t, r, "POST", "/cart/add", `{"product_id":"A","price":10,"quantity":1,"size":"M"}`)

	c := decodeCart(t, do(t, r, "POST", "/cart/quantity", `{"product_id":"A","size":"M","quantity":5}`))
	require.Len(t, c.Items, 2)
	assert.Equal(t, 5, c.Items[1].Quantity)

	c = decodeCart(t, do(t, r, "POST", "/cart/quantity", `{"product_id":"A","size":"S","quantity":0}`))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "M", c.Items[0].Size)

	c = decodeCart(t, do(t, r, "POST", "/cart/remove", `{"product_id":"A","size":"M"}`))
	assert.Empty(t, c.Items)
}

func TestShippingAndDestination(t *testing.T) {
	r := newRouter(t)
	do(t, r, "POST", "/cart/add", `{"product_id":"A","price":"100","quantity":1}`)

	c := decodeCart(t, do(t, r, "POST", "/cart/destination", `{"destination":"United States"}`))
	assert.Equal(t, "United States", c.Destination)
	c = decodeCart(t, do(t, r, "POST", "/cart/shipping", `{"method":"Express"}`))
	assert.Equal(t, "Express", c.ShippingMethod)
	assert.True(t, c.Pricing.Total.Equal(decimal.NewFromInt(125)))

	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/cart/shipping", `{"method":"Teleport"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/cart/destination", `{"destination":"Mars"}`).Code)
}

func TestCheckoutFlow(t *testing.T) {
	r := newRouter(t)

	// empty cart is rejected at this layer
	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/checkout/order", "").Code)

	do(t, r, "POST", "/cart/add", `{"product_id":"A","price":"250","quantity":2}`)
	rec := do(t, r, "POST", "/checkout/order", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ord struct {
		ID    string          `json:"id"`
		Total decimal.Decimal `json:"total"`
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ord))
	assert.True(t, strings.HasPrefix(ord.ID, "ORD-"))
	// free shipping at 500, 5% tax
	assert.True(t, ord.Total.Equal(decimal.NewFromInt(525)), ord.Total.String())
	assert.Len(t, ord.Items, 1)

	assert.Equal(t, 0, decodeCart(t, do(t, r, "GET", "/cart", "")).Count)

	rec = do(t, r, "GET", "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Orders []json.RawMessage `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Len(t, hist.Orders, 1)
}

func TestLoginSwitchesBucket(t *testing.T) {
	r := newRouter(t)
	do(t, r, "POST", "/cart/add", `{"product_id":"G","price":1,"quantity":1}`)

	rec := do(t, r, "POST", "/session/login", `{"email":"a@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":true,"email":"a@x.com"}`, rec.Body.String())

	c := decodeCart(t, do(t, r, "GET", "/cart", ""))
	assert.Equal(t, "a@x.com", c.Identity)
	assert.Equal(t, 0, c.Count, "guest cart must not merge into a@x.com")

	do(t, r, "POST", "/cart/add", `{"product_id":"U","price":1,"quantity":3}`)
	do(t, r, "POST", "/session/logout", "")
	assert.Equal(t, 1, decodeCart(t, do(t, r, "GET", "/cart", "")).Count)

	do(t, r, "POST", "/session/login", `{"email":"a@x.com"}`)
	assert.Equal(t, 3, decodeCart(t, do(t, r, "GET", "/cart", "")).Count)

	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/session/login", `{"email":""}`).Code)
}

func TestClear(t *testing.T) {
	r := newRouter(t)
	do(t, r, "POST", "/cart/add", `{"product_id":"A","price":1,"quantity":3}`)
	assert.Equal(t, 0, decodeCart(t, do(t, r, "POST", "/cart/clear", "")).Count)
}
