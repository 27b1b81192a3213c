// Package predict provides an HTTP-client for the external disease-prediction service
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/skinsight/DetectService/internal/model"
)

type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	ImageURL string `json:"image_url"`
}

type predictResponse struct {
	Data map[string]float64 `json:"data"`
}

// Predict - один запрос без ретраев, таймаут ограничен клиентом.
// Ответ валидируется до ранжирования: имена непустые, вероятности в [0,1].
func (c *Client) Predict(ctx context.Context, imageURL string) (map[string]float64, error) {
	body, err := json.Marshal(predictRequest{ImageURL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict-request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict-request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPredictFailed, err)
	}
	defer closeFileFlow(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: service answered with status %d", model.ErrPredictFailed, resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", model.ErrPredictFailed, err)
	}

	for name, prob := range parsed.Data {
		if name == "" {
			return nil, fmt.Errorf("%w: empty disease name in response", model.ErrPredictFailed)
		}
		if prob < 0 || prob > 1 {
			return nil, fmt.Errorf("%w: probability %v for %q is out of [0,1]", model.ErrPredictFailed, prob, name)
		}
	}

	return parsed.Data, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Predict-client failed to close response body:", err)
	}
}
