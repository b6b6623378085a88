package services

import (
	"OcuCare/models"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPicksHighestScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		require.NoError(t, err)
		assert.Equal(t, []byte("fundus-image"), decoded)

		json.NewEncoder(w).Encode(classifyResponse{Scores: map[string]float64{
			models.LabelNormal:   0.05,
			models.LabelCataract: 0.87,
			models.LabelGlaucoma: 0.08,
		}})
	}))
	defer server.Close()

	service := NewClassifierService(server.URL)
	label, confidence, err := service.Classify(context.Background(), []byte("fundus-image"))
	require.NoError(t, err)
	assert.Equal(t, models.LabelCataract, label)
	assert.InDelta(t, 0.87, confidence, 1e-9)
}

func TestClassifyEmptyScoresFallsBackToUnclassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{Scores: map[string]float64{}})
	}))
	defer server.Close()

	service := NewClassifierService(server.URL)
	label, confidence, err := service.Classify(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, models.LabelUnclassified, label)
	assert.Zero(t, confidence)
}

func TestClassifyNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := NewClassifierService(server.URL)
	_, _, err := service.Classify(context.Background(), []byte("x"))
	assert.Error(t, err)
}
