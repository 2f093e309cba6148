package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthStatus represents the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component -> "ok"/"empty"/"error"
	Items  int               `json:"items"`
}

// Healthy reports whether every check passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// Health fetches the server health. A degraded or failing server answers
// 503 with a report; that is returned without an error.
func (c *Client) Health(ctx context.Context) (status HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	r, err := c.http.R().SetContext(ctx).Get(pathHealth)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
	if r.StatusCode() != http.StatusOK && r.StatusCode() != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeError(r)
	}
	if err := json.Unmarshal([]byte(r.String()), &status); err != nil {
		return HealthStatus{}, fmt.Errorf("health: decode: %w", err)
	}
	return status, nil
}
