package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/finlearn/internal/models"
)

var (
	// ErrAssetNotFound indicates the provider answered but knows no such asset.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrUnsupportedAsset indicates the provider does not cover this asset
	// type; the chain skips to the next provider.
	ErrUnsupportedAsset = errors.New("asset type not supported by provider")
)

// getJSON performs a GET request and decodes the JSON response into result.
func getJSON(ctx context.Context, client *http.Client, reqURL string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "finlearn/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrAssetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func clampResults(results []models.AssetSearchResult, limit int) []models.AssetSearchResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
