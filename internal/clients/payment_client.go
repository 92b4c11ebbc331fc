package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taskhive/backend/internal/config"
)

// PaymentProcessorClient talks to the external payment processor. Every
// request carries a caller-supplied idempotency key so retries never create
// a second charge, and the HTTP client enforces a bounded timeout so payment
// initiation can fail fast instead of hanging a request.
type PaymentProcessorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPaymentProcessorClient creates a payment processor client from config.
func NewPaymentProcessorClient(cfg config.PaymentsConfig) *PaymentProcessorClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaymentProcessorClient{
		baseURL: cfg.ProcessorBaseURL,
		apiKey:  cfg.ProcessorAPIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PayoutRequest is the processor-facing payment instruction.
type PayoutRequest struct {
	IdempotencyKey string            `json:"-"`
	Amount         string            `json:"amount"`
	Currency       string            `json:"currency"`
	RecipientID    string            `json:"recipient_id"`
	Description    string            `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// PayoutResponse is the processor's acknowledgement of a payout request.
type PayoutResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// CreatePayout submits a payout request. The idempotency key is sent as the
// Idempotency-Key header; the processor deduplicates on it.
func (c *PaymentProcessorClient) CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutResponse, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("payment processor base URL not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payout request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payout response: %w", err)
	}

	var payout PayoutResponse
	if err := json.Unmarshal(data, &payout); err != nil {
		return nil, fmt.Errorf("failed to parse payout response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		msg := payout.Error
		if msg == "" {
			msg = string(data)
		}
		return nil, fmt.Errorf("payout rejected by processor (status %d): %s", resp.StatusCode, msg)
	}

	return &payout, nil
}
