// Package capworks is a small HTTP client for the capworks API.
package capworks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  []string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("capworks api error: status=%d code=%s fields=%s", e.Status, e.Code, strings.Join(e.Fields, ","))
	}
	return fmt.Sprintf("capworks api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

type CapType struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RatePerDozen decimal.Decimal `json:"ratePerDozen"`
}

type Production struct {
	WorkerID   string `json:"workerId"`
	CapTypeID  string `json:"capTypeId"`
	Units      int    `json:"units"`
	Dozens     int    `json:"dozens"`
	LooseUnits int    `json:"looseUnits"`
}

type Wage struct {
	WorkerID string          `json:"workerId"`
	Wage     decimal.Decimal `json:"wage"`
}

type Dashboard struct {
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	ActiveWorkers int             `json:"activeWorkers"`
	LowStockItems int             `json:"lowStockItems"`
	StockUnits    int             `json:"stockUnits"`
	WageBill      decimal.Decimal `json:"wageBill"`
	Currency      string          `json:"currency"`
	Version       int64           `json:"version"`
}

type Customer struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location"`
}

type PaymentRequest struct {
	CustomerID     string
	TotalAmount    decimal.Decimal
	ReceivedAmount decimal.Decimal
	Mode           string
	Reference      string
	// IdempotencyKey, when set, makes retries of the same request safe.
	IdempotencyKey string
}

type Payment struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customerId"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ReceivedAmount decimal.Decimal `json:"receivedAmount"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Mode           string          `json:"mode"`
	Reference      string          `json:"reference,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Client is a resty-backed API client rooted at /api/v1.
type Client struct {
	httpClient *resty.Client
}

func New(baseURL string) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v1").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
	return &Client{httpClient: restyClient}
}

func do[T any](ctx context.Context, c *Client, method, path string, body any, headers map[string]string) (T, error) {
	result := new(envelope[T])
	apiErr := new(envelope[json.RawMessage])

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		var zero T
		out := &APIError{Status: resp.StatusCode()}
		if apiErr.Error != nil {
			out.Code = apiErr.Error.Code
			out.Message = apiErr.Error.Message
			for _, f := range apiErr.Error.Details.Fields {
				out.Fields = append(out.Fields, f.Field)
			}
		}
		return zero, out
	}
	return result.Data, nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func (c *Client) CapTypes(ctx context.Context) ([]CapType, error) {
	return do[[]CapType](ctx, c, http.MethodGet, "/cap-types", nil, nil)
}

func (c *Client) AddCapType(ctx context.Context, name string, rate decimal.Decimal) (CapType, error) {
	return do[CapType](ctx, c, http.MethodPost, "/cap-types", map[string]any{
		"name":         name,
		"ratePerDozen": number(rate),
	}, nil)
}

func (c *Client) UpdateRate(ctx context.Context, capTypeID string, rate decimal.Decimal) (CapType, error) {
	return do[CapType](ctx, c, http.MethodPatch, "/cap-types/"+url.PathEscape(capTypeID), map[string]any{
		"ratePerDozen": number(rate),
	}, nil)
}

func (c *Client) AddWorker(ctx context.Context, workerID string) error {
	_, err := do[json.RawMessage](ctx, c, http.MethodPost, "/workers", map[string]string{"id": workerID}, nil)
	return err
}

func (c *Client) RecordProduction(ctx context.Context, workerID, capTypeID string, totalUnits int) (Production, error) {
	path := fmt.Sprintf("/production/%s/%s", url.PathEscape(workerID), url.PathEscape(capTypeID))
	return do[Production](ctx, c, http.MethodPut, path, map[string]int{"totalUnits": totalUnits}, nil)
}

func (c *Client) Wage(ctx context.Context, workerID string) (Wage, error) {
	return do[Wage](ctx, c, http.MethodGet, "/wages/"+url.PathEscape(workerID), nil, nil)
}

func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	return do[Dashboard](ctx, c, http.MethodGet, "/dashboard", nil, nil)
}

func (c *Client) AddCustomer(ctx context.Context, customer Customer) (Customer, error) {
	return do[Customer](ctx, c, http.MethodPost, "/customers", customer, nil)
}

func (c *Client) RecordPayment(ctx context.Context, req PaymentRequest) (Payment, error) {
	var headers map[string]string
	if req.IdempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}
	return do[Payment](ctx, c, http.MethodPost, "/payments", map[string]any{
		"customerId":     req.CustomerID,
		"totalAmount":    number(req.TotalAmount),
		"receivedAmount": number(req.ReceivedAmount),
		"mode":           req.Mode,
		"reference":      req.Reference,
	}, headers)
}
