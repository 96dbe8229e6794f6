package bridge_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/bridge"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/jinford/seo-autopilot/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(baseURL string) *bridge.Client {
	return bridge.New(config.PlatformAPIConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	})
}

func TestClient_ScanImages(t *testing.T) {
	// Setup
	connectionID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, fmt.Sprintf("/connections/%s/images", connectionID), r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"images":[
			{"url":"https://store.example.com/a.jpg","pageURL":"https://store.example.com/","altText":""},
			{"url":"https://store.example.com/b.jpg","pageURL":"https://store.example.com/","altText":"Product"}
		]}`)
	}))
	defer server.Close()

	// Execute
	images, err := newClient(server.URL).ScanImages(context.Background(), connectionID)

	// Assert
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].MissingAlt())
	assert.False(t, images[1].MissingAlt())
}

func TestClient_ExecuteFixes(t *testing.T) {
	// Setup
	connectionID := uuid.New()
	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, fmt.Sprintf("/connections/%s/fixes", connectionID), r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, userID.String(), body["userID"])

		fmt.Fprint(w, `{"success":true,"fixes":[
			{"fixID":"fix-1","description":"Set meta description","before":"","after":"A concise description"}
		]}`)
	}))
	defer server.Close()

	// Execute
	execution, err := newClient(server.URL).ExecuteFixes(context.Background(), connectionID, userID)

	// Assert
	require.NoError(t, err)
	assert.True(t, execution.Success)
	require.Len(t, execution.Fixes, 1)
	assert.Equal(t, "fix-1", execution.Fixes[0].FixID)
}

func TestClient_OptimizeImages(t *testing.T) {
	// Setup
	connectionID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("/connections/%s/images/optimize", connectionID), r.URL.Path)

		var opts domain.OptimizeOptions
		require.NoError(t, json.NewDecoder(r.Body).Decode(&opts))
		assert.True(t, opts.OnlyMissingAlt)
		assert.Equal(t, 20, opts.MaxImages)

		fmt.Fprint(w, `{"successful":4,"failed":1}`)
	}))
	defer server.Close()

	// Execute
	result, err := newClient(server.URL).OptimizeImages(context.Background(), connectionID, domain.OptimizeOptions{
		OnlyMissingAlt: true,
		MaxImages:      20,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 1, result.Failed)
}

func TestClient_StoreImages(t *testing.T) {
	// Setup
	connectionID := uuid.New()
	var stored int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body struct {
			Images []domain.SiteImage `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		stored = len(body.Images)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	// Execute
	err := newClient(server.URL).StoreImages(context.Background(), connectionID, []domain.SiteImage{
		{URL: "https://store.example.com/a.jpg"},
		{URL: "https://store.example.com/b.jpg"},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
}

func TestClient_ErrorIncludesResponseBody(t *testing.T) {
	// Setup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"connection has been revoked"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	// Execute
	_, err := newClient(server.URL).ExecuteFixes(context.Background(), uuid.New(), uuid.New())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "connection has been revoked")
}
