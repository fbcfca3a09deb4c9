// Package storefront is the typed client the storefront and back-office
// front-ends use to talk to the REST API, plus the view models that sit on top
// of it: the cart view, the checkout view and the order action bar.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	apiPrefix                  = "/api/v1"
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 4096
	headerIdempotencyKey       = "Idempotency-Key"
)

var errTokenSourceRequired = errors.New("token source is required")

// TokenSource hands out the bearer token for the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a token obtained elsewhere.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client calls the storefront REST API on behalf of one signed-in user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logg       *logger.Logger
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLogger attaches a logger for failed calls.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient builds an API client from config.
func NewClient(cfg config.StorefrontConfig, tokens TokenSource, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errTokenSourceRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		tokens:     tokens,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.baseURL == "" {
		return nil, fmt.Errorf("storefront base url is required")
	}
	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("parse storefront base url: %w", err)
	}
	return client, nil
}

// Cart

func (c *Client) GetCart(ctx context.Context) ([]cart.Group, error) {
	var groups []cart.Group
	err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &groups)
	return groups, err
}

func (c *Client) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (*cart.LineItem, error) {
	var item cart.LineItem
	body := map[string]any{"productId": productID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, "/cart", nil, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*cart.LineItem, error) {
	var item cart.LineItem
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, http.MethodPut, "/cart-item/"+itemID.String(), nil, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteCartItem(ctx context.Context, itemID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/cart-item/"+itemID.String(), nil, nil, nil)
}

// PreviewCheckout asks the server to re-read the selected lines and price them.
func (c *Client) PreviewCheckout(ctx context.Context, selected []uuid.UUID) (*checkout.Preview, error) {
	var preview checkout.Preview
	body := map[string]any{"selectedItemIds": selected}
	if err := c.do(ctx, http.MethodPost, "/cart/checkout", nil, body, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Checkout

func (c *Client) CreateIntent(ctx context.Context, selected []uuid.UUID) (checkout.Intent, error) {
	var intent checkout.Intent
	body := map[string]any{"selectedItemIds": selected}
	err := c.do(ctx, http.MethodPost, "/checkout/intents", nil, body, &intent)
	return intent, err
}

func (c *Client) ConsumeIntent(ctx context.Context, intentID uuid.UUID) (checkout.Intent, error) {
	var intent checkout.Intent
	err := c.do(ctx, http.MethodPost, "/checkout/intents/"+intentID.String()+"/consume", nil, nil, &intent)
	return intent, err
}

// CreateOrders submits one request per seller. A response that lists failures
// is not an error; only a call that never produced per-seller results is.
func (c *Client) CreateOrders(ctx context.Context, requests []checkout.CreateOrderRequest, idempotencyKey string) (*checkout.CreateOrdersResponse, error) {
	var resp checkout.CreateOrdersResponse
	if err := c.do(ctx, http.MethodPost, "/orders", idempotency(idempotencyKey), requests, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Orders

func (c *Client) ListOrders(ctx context.Context, filter orders.ListFilter, params pagination.Params) (pagination.Page[orders.OrderView], error) {
	q := url.Values{}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Cursor != "" {
		q.Set("cursor", params.Cursor)
	}
	path := "/orders"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page pagination.Page[orders.OrderView]
	err := c.do(ctx, http.MethodGet, path, nil, nil, &page)
	return page, err
}

func (c *Client) GetOrder(ctx context.Context, orderID uuid.UUID) (*orders.OrderView, error) {
	var view orders.OrderView
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID.String(), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) TransitionOrder(ctx context.Context, orderID uuid.UUID, req orders.TransitionRequest, idempotencyKey string) (*orders.OrderView, error) {
	var view orders.OrderView
	path := "/orders/" + orderID.String() + "/transitions"
	if err := c.do(ctx, http.MethodPost, path, idempotency(idempotencyKey), req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ReviewDetail(ctx context.Context, orderID, detailID uuid.UUID, req orders.ReviewRequest) (*orders.ReviewView, error) {
	var view orders.ReviewView
	path := fmt.Sprintf("/orders/%s/details/%s/review", orderID, detailID)
	if err := c.do(ctx, http.MethodPost, path, nil, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Addresses

func (c *Client) ListAddresses(ctx context.Context) ([]address.View, error) {
	var out []address.View
	err := c.do(ctx, http.MethodGet, "/user-address", nil, nil, &out)
	return out, err
}

func (c *Client) CreateAddress(ctx context.Context, req address.CreateRequest) (*address.View, error) {
	var out address.View
	if err := c.do(ctx, http.MethodPost, "/user-address", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func idempotency(key string) http.Header {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	h := http.Header{}
	h.Set(headerIdempotencyKey, key)
	return h
}

func (c *Client) do(ctx context.Context, method, path string, headers http.Header, body, out any) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	target := strings.TrimRight(c.baseURL, "/") + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.warn(ctx, method, path, err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		c.warn(ctx, method, path, apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

// bearer refuses to send a token that has already expired so the caller can
// re-authenticate instead of waiting for a 401.
func (c *Client) bearer(ctx context.Context) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session token unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		if !claims.ExpiresAt.After(c.now()) {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
	}
	return token, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return pkgerrors.FromAPI(envelope.Error)
	}
	code := pkgerrors.CodeDependency
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	}
	return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), "storefront api error")
}

func (c *Client) warn(ctx context.Context, method, path string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"method": method, "path": path, "error": err.Error()})
	c.logg.Warn(ctx, "storefront api call failed")
}
