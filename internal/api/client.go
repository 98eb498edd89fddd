package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
)

var ErrUnavailable = errors.New("cart api unavailable")

type tokenKey struct{}

// WithToken stores the caller's bearer token in the context. Requests
// without one go out unauthenticated; the API decides whether the
// endpoint allows guests.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok {
		return tok
	}
	return ""
}

// Client talks to the remote cart/catalog API over HTTP/JSON. Transport
// failures and 5xx responses are retried with exponential backoff and
// counted by a circuit breaker; 4xx responses surface immediately with
// the server's message.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	log     logrus.FieldLogger
}

func NewClient(baseURL string, log logrus.FieldLogger) *Client {
	settings := gobreaker.Settings{
		Name:    "cart-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		log:     log,
	}
}

type cartResponse struct {
	Cart    domain.Cart `json:"cart"`
	Message string      `json:"message"`
}

type summaryResponse struct {
	Summary domain.CartSummary `json:"summary"`
	Message string             `json:"message"`
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type addItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

func (c *Client) GetSummary(ctx context.Context) (domain.CartSummary, error) {
	var resp summaryResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart/summary", nil, &resp); err != nil {
		return domain.CartSummary{}, err
	}
	return resp.Summary, nil
}

func (c *Client) AddItem(ctx context.Context, productID int64, quantity int, size string) (string, error) {
	var resp messageResponse
	req := addItemRequest{ProductID: productID, Quantity: quantity, Size: size}
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart/items", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) (string, error) {
	var resp messageResponse
	req := updateQuantityRequest{Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, "/api/v1/cart/items/"+itemID, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+itemID, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ClearCart(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// do runs one logical request. Each attempt rebuilds the request so the
// body can be resent; the breaker wraps the attempt so transport errors
// and 5xx count against it. Retries never apply to 4xx.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if tok := TokenFromContext(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode >= 500 {
				apiErr := parseAPIError(resp)
				resp.Body.Close()
				return nil, apiErr
			}
			return resp, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(fmt.Errorf("%w: %s", ErrUnavailable, err))
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.Retryable() {
				return backoff.Permanent(apiErr)
			}
			c.log.WithError(err).WithField("path", path).Warn("cart api attempt failed")
			return err // transport error or retryable status
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			apiErr := parseAPIError(resp)
			if apiErr.Retryable() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response failed: %w", err))
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	return backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
