package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrPermissionDenied means the device refused location access. It will
	// not self-resolve; loops must stop rather than retry.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrTimeout means no fix was obtained within the deadline. Transient.
	ErrTimeout = errors.New("location fix timed out")
)

// Position is a device fix in degrees.
type Position struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_m"`
}

// Provider obtains a fresh device fix. Implementations must not cache; every
// call requests a new position. Cancellation of ctx does not abort a request
// already handed to the device, it only stops waiting for it.
type Provider interface {
	Current(ctx context.Context) (Position, error)
}

// AgentProvider asks the user's device agent for a fix over HTTP. The agent
// answers 403 when the OS-level location permission has been revoked.
type AgentProvider struct {
	baseURL string
	client  *http.Client
}

func NewAgentProvider(baseURL string) *AgentProvider {
	return &AgentProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *AgentProvider) Current(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/position?maximum_age=0", nil)
	if err != nil {
		return Position{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Position{}, ErrTimeout
		}
		return Position{}, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return Position{}, ErrPermissionDenied
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return Position{}, ErrTimeout
	default:
		return Position{}, fmt.Errorf("agent returned status %d", resp.StatusCode)
	}
	var pos Position
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		return Position{}, fmt.Errorf("decode position: %w", err)
	}
	return pos, nil
}
