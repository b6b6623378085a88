package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"OcuCare/models"
)

// ClassifierService runs one forward pass of the eye-disease model against a
// hosted inference endpoint: image bytes in, per-class confidences out.
type ClassifierService interface {
	Classify(ctx context.Context, image []byte) (label string, confidence float64, err error)
}

type classifierService struct {
	endpoint string
	client   *http.Client
}

func NewClassifierService(endpoint string) ClassifierService {
	return &classifierService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type classifyRequest struct {
	Image string `json:"image"` // base64-encoded bytes
}

type classifyResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// Classify posts the image and picks the highest-scoring label. An empty
// score vector yields the unclassified label with zero confidence.
func (s *classifierService) Classify(ctx context.Context, image []byte) (string, float64, error) {
	payload, err := json.Marshal(classifyRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build classification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("classification endpoint returned status %d", resp.StatusCode)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", 0, fmt.Errorf("failed to decode classification response: %w", err)
	}

	label := models.LabelUnclassified
	confidence := 0.0
	for candidate, score := range decoded.Scores {
		if score > confidence {
			label = candidate
			confidence = score
		}
	}
	return label, confidence, nil
}
