package marketplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

type AuthFunc func(*http.Request)

func BearerAuth(token string) AuthFunc {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// Client is the JSON transport shared by the adapter variants. It maps HTTP
// status codes onto the engine's error taxonomy so the dispatcher can decide
// between retrying, aborting and failing.
type Client struct {
	apiURL      string
	marketplace string
	auth        AuthFunc
	client      *http.Client
	log         logger.Logger
}

func NewClient(marketplace, apiURL string, auth AuthFunc, writer io.Writer) *Client {
	return &Client{
		apiURL:      apiURL,
		marketplace: marketplace,
		auth:        auth,
		client:      &http.Client{Timeout: 30 * time.Second},
		log:         logger.NewLogger(writer, fmt.Sprintf("[%s/http]", marketplace)),
	}
}

func (c *Client) DoJSON(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
	var bodyBytes []byte
	if requestBody != nil {
		var err error
		bodyBytes, err = json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+endpoint, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != nil {
		c.auth(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request was cancelled: %w", ctx.Err())
		default:
			return &engine.TransientError{Err: fmt.Errorf("%s %s: %w", method, endpoint, err)}
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &engine.TransientError{Err: fmt.Errorf("reading %s response: %w", endpoint, err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Log("%s %s returned %s", method, endpoint, resp.Status)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &engine.AuthError{Marketplace: c.marketplace, Err: fmt.Errorf("%s returned %s", endpoint, resp.Status)}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return &engine.TransientError{Err: fmt.Errorf("%s returned %s", endpoint, resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s returned %s", endpoint, resp.Status)
	}

	if response != nil {
		if err := json.Unmarshal(body, response); err != nil {
			return fmt.Errorf("failed to unmarshal %s response: %w", endpoint, err)
		}
	}
	return nil
}

// ValidateEntry rejects items no marketplace would accept. A failed entry is
// reported for its sku only and never blocks the rest of the batch.
func ValidateEntry(entry models.Change) *engine.ValidationError {
	if entry.Field == models.FieldRemoved {
		return nil
	}
	if entry.NewStock < 0 {
		return &engine.ValidationError{SKU: entry.SKU, Reason: fmt.Sprintf("negative stock %d", entry.NewStock)}
	}
	if (entry.Field == models.FieldPrice || entry.Field == models.FieldBoth) && entry.NewPrice <= 0 {
		return &engine.ValidationError{SKU: entry.SKU, Reason: fmt.Sprintf("non-positive price %g", entry.NewPrice)}
	}
	return nil
}

// OverlayStored builds a baseline for the offers a marketplace knows about,
// filling in the last pushed values where the store has them. Offers missing
// from the store keep zero values, matching the zero-baseline diff policy.
func OverlayStored(offerIDs []string, stored map[string]models.RemoteItem) map[string]models.RemoteItem {
	baseline := make(map[string]models.RemoteItem, len(offerIDs))
	for _, offerID := range offerIDs {
		item := models.RemoteItem{SKU: offerID}
		if prev, ok := stored[offerID]; ok {
			item = prev
		}
		baseline[offerID] = item
	}
	return baseline
}
