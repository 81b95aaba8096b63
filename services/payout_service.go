// services/payout_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/goldsip/goldsip_backend/models"
)

// PayoutService hands completed withdrawals to the external payout
// provider that actually moves money to the user's bank or UPI account.
// The ledger never depends on this call succeeding; the provider is
// reconciled out-of-band.
type PayoutService struct {
	baseURL   string
	apiKey    string
	isTesting bool
	client    *http.Client
}

// NewPayoutService creates a new payout service instance
func NewPayoutService() *PayoutService {
	payoutEnv := os.Getenv("PAYOUT_ENV")
	isTesting := payoutEnv == "testing"

	baseURL := os.Getenv("PAYOUT_API_URL")
	apiKey := os.Getenv("PAYOUT_API_KEY")

	if baseURL == "" || apiKey == "" {
		log.Printf("WARNING: Payout provider not fully configured:")
		if baseURL == "" {
			log.Printf("  - PAYOUT_API_URL is missing")
		}
		if apiKey == "" {
			log.Printf("  - PAYOUT_API_KEY is missing")
		}
		log.Printf("Completed withdrawals will need manual payout until these are set")
	} else {
		log.Printf("Payout Service Configuration:")
		log.Printf("  Environment: %s", map[bool]string{true: "testing", false: "production"}[isTesting])
		log.Printf("  Base URL: %s", baseURL)
		log.Printf("  API Key: [CONFIGURED]")
	}

	return &PayoutService{
		baseURL:   baseURL,
		apiKey:    apiKey,
		isTesting: isTesting,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type payoutTransferRequest struct {
	Reference      string  `json:"reference"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	PaymentMethod  string  `json:"paymentMethod"`
	PaymentDetails string  `json:"paymentDetails"`
}

type payoutTransferResponse struct {
	Status      string `json:"status"`
	ProviderRef string `json:"providerRef"`
	Message     string `json:"message,omitempty"`
}

// InitiateTransfer asks the provider to pay out one completed
// withdrawal. The withdrawal's uuid reference doubles as the provider's
// idempotency key, so re-sending after a timeout cannot double-pay.
func (s *PayoutService) InitiateTransfer(ctx context.Context, withdrawal *models.Withdrawal) error {
	if s.baseURL == "" || s.apiKey == "" {
		return fmt.Errorf("payout provider not configured")
	}

	reqBody := payoutTransferRequest{
		Reference:      withdrawal.Reference,
		Amount:         withdrawal.Amount,
		Currency:       "INR",
		PaymentMethod:  withdrawal.PaymentMethod,
		PaymentDetails: withdrawal.PaymentDetails,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transfers", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Idempotency-Key", withdrawal.Reference)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("payout request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read payout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payout provider returned %d: %s", resp.StatusCode, string(body))
	}

	var transferResp payoutTransferResponse
	if err := json.Unmarshal(body, &transferResp); err != nil {
		return fmt.Errorf("failed to decode payout response: %w", err)
	}

	log.Printf("Payout initiated for withdrawal %s: provider ref %s, status %s",
		withdrawal.ID.Hex(), transferResp.ProviderRef, transferResp.Status)
	return nil
}
