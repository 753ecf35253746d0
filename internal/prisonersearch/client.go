package prisonersearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// batchSize caps the prisoner numbers sent per search request; large bulk
// payloads split into multiple calls.
const batchSize = 1000

// Client resolves prison numbers against the prisoner search service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Resolve returns the subset of prisonNumbers known to the search service.
// Callers compare it with the input to find the unknown ones.
func (c *Client) Resolve(ctx context.Context, prisonNumbers []string) ([]string, error) {
	found := make([]string, 0, len(prisonNumbers))
	for start := 0; start < len(prisonNumbers); start += batchSize {
		end := start + batchSize
		if end > len(prisonNumbers) {
			end = len(prisonNumbers)
		}
		batch, err := c.resolveBatch(ctx, prisonNumbers[start:end])
		if err != nil {
			return nil, err
		}
		found = append(found, batch...)
	}
	return found, nil
}

func (c *Client) resolveBatch(ctx context.Context, batch []string) ([]string, error) {
	body, err := json.Marshal(map[string][]string{"prisonerNumbers": batch})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	var prisoners []struct {
		PrisonerNumber string `json:"prisonerNumber"`
	}
	err = retry(ctx, c.logger, 3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/prisoner-search/prisoner-numbers", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build search request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("prisoner search request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("prisoner search returned status %d", resp.StatusCode)
		}
		prisoners = prisoners[:0]
		if err := json.NewDecoder(resp.Body).Decode(&prisoners); err != nil {
			return fmt.Errorf("failed to decode search response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	numbers := make([]string, 0, len(prisoners))
	for _, p := range prisoners {
		numbers = append(numbers, p.PrisonerNumber)
	}
	return numbers, nil
}
