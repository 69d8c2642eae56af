package testgen

import (
	"context"
	"fmt"
	"log"
)

// getStandings retrieves the top N standings entries.
func getStandings(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	log.Printf("getting top %d standings entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/standings?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var standings []Entry
	if err := unmarshalJSON(body, &standings); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.StandingsEntries = len(standings)
	log.Printf("retrieved %d standings entries", len(standings))

	return standings, nil
}

// getPlayerIdentity retrieves the resolved identity for one player id.
func getPlayerIdentity(ctx context.Context, client *HTTPClient, baseURL, playerID string) (PlayerIdentity, error) {
	url := fmt.Sprintf("%s/players/%s", baseURL, playerID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return PlayerIdentity{}, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return PlayerIdentity{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return PlayerIdentity{}, fmt.Errorf("failed to read response: %w", err)
	}

	var ident PlayerIdentity
	if err := unmarshalJSON(body, &ident); err != nil {
		return PlayerIdentity{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return ident, nil
}
