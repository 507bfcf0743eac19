package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("khalti config invalid")
	ErrRequestFailed   = errors.New("khalti request failed")
	ErrResponseInvalid = errors.New("khalti response invalid")
)

// Gateway lookup status values
const (
	LookupStatusCompleted = "Completed"
	LookupStatusPending   = "Pending"
	LookupStatusRefunded  = "Refunded"
	LookupStatusExpired   = "Expired"
	LookupStatusCanceled  = "User canceled"
)

// Config Khalti ePayment gateway settings
type Config struct {
	BaseURL        string `json:"base_url"`    // e.g. https://a.khalti.com/api/v2
	SecretKey      string `json:"secret_key"`  // merchant live/test secret key
	WebsiteURL     string `json:"website_url"` // merchant site, echoed to the gateway
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// CustomerInfo payer identity forwarded to the checkout page
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ProductDetail one purchased line item forwarded to the gateway
type ProductDetail struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	TotalPrice int64  `json:"total_price"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// InitiateInput checkout session creation input. AmountPaisa is the
// integer minor-unit total; the gateway rejects decimal amounts.
type InitiateInput struct {
	ReturnURL       string
	AmountPaisa     int64
	PurchaseOrderID string
	OrderName       string
	Customer        CustomerInfo
	Products        []ProductDetail
}

// InitiateResult checkout session creation result
type InitiateResult struct {
	Pidx       string
	PaymentURL string
	ExpiresAt  string
	Raw        map[string]interface{}
}

// LookupResult gateway-side state of one checkout session
type LookupResult struct {
	Pidx          string
	TotalAmount   int64
	Status        string
	TransactionID string
	Fee           int64
	Refunded      bool
	Raw           map[string]interface{}
}

// ValidateConfig checks required settings
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalized() Config {
	out := Config{
		BaseURL:        strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		SecretKey:      strings.TrimSpace(c.SecretKey),
		WebsiteURL:     strings.TrimSpace(c.WebsiteURL),
		TimeoutSeconds: c.TimeoutSeconds,
	}
	if out.TimeoutSeconds <= 0 {
		out.TimeoutSeconds = 15
	}
	return out
}

// AmountToPaisa converts a major-unit amount to integer paisa,
// rounding half away from zero.
func AmountToPaisa(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Initiate creates a checkout session and returns the gateway pidx plus
// the hosted payment page URL.
func Initiate(ctx context.Context, cfg *Config, input InitiateInput) (*InitiateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ReturnURL) == "" || strings.TrimSpace(input.PurchaseOrderID) == "" {
		return nil, fmt.Errorf("%w: return_url and purchase_order_id are required", ErrConfigInvalid)
	}
	if input.AmountPaisa <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrConfigInvalid)
	}
	normalized := cfg.normalized()

	params := map[string]interface{}{
		"return_url":          input.ReturnURL,
		"website_url":         normalized.WebsiteURL,
		"amount":              input.AmountPaisa,
		"purchase_order_id":   input.PurchaseOrderID,
		"purchase_order_name": input.OrderName,
		"customer_info":       input.Customer,
	}
	if len(input.Products) > 0 {
		params["product_details"] = input.Products
	}

	respBytes, err := postJSON(ctx, normalized, "/epayment/initiate/", params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		Pidx       string `json:"pidx"`
		PaymentURL string `json:"payment_url"`
		ExpiresAt  string `json:"expires_at"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.Pidx == "" || resp.PaymentURL == "" {
		return nil, fmt.Errorf("%w: missing pidx or payment_url", ErrResponseInvalid)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	return &InitiateResult{
		Pidx:       resp.Pidx,
		PaymentURL: resp.PaymentURL,
		ExpiresAt:  resp.ExpiresAt,
		Raw:        raw,
	}, nil
}

// Lookup queries the gateway for the settled state of a checkout session.
// The gateway is the source of truth for whether the money moved.
func Lookup(ctx context.Context, cfg *Config, pidx string) (*LookupResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return nil, fmt.Errorf("%w: pidx is required", ErrConfigInvalid)
	}
	normalized := cfg.normalized()

	respBytes, err := postJSON(ctx, normalized, "/epayment/lookup/", map[string]interface{}{
		"pidx": pidx,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		Pidx          string `json:"pidx"`
		TotalAmount   int64  `json:"total_amount"`
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
		Fee           int64  `json:"fee"`
		Refunded      bool   `json:"refunded"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.Status == "" {
		return nil, fmt.Errorf("%w: missing status", ErrResponseInvalid)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	return &LookupResult{
		Pidx:          resp.Pidx,
		TotalAmount:   resp.TotalAmount,
		Status:        resp.Status,
		TransactionID: resp.TransactionID,
		Fee:           resp.Fee,
		Refunded:      resp.Refunded,
		Raw:           raw,
	}, nil
}

func postJSON(ctx context.Context, cfg Config, path string, params map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+cfg.SecretKey)

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
