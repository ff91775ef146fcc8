package sigclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/woundlink/callcore/internal/protocol"
)

const statsTimeout = 5 * time.Second

// FetchStats reads the server's /stats snapshot.
func FetchStats(ctx context.Context, statsURL string) (protocol.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statsURL, nil)
	if err != nil {
		return protocol.Stats{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return protocol.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.Stats{}, fmt.Errorf("fetch stats: unexpected status %s", resp.Status)
	}

	var stats protocol.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return protocol.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}
