package esplora

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bitseal-network/seald/pkg/circuitbreaker"
	"github.com/bitseal-network/seald/pkg/explorer"
	"github.com/bitseal-network/seald/pkg/httputil"
	"github.com/sony/gobreaker"
)

type esplora struct {
	apiURL string
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new esplora service as an explorer.Service interface.
func NewService(apiURL string) (explorer.Service, error) {
	service := &esplora{
		apiURL: apiURL,
		cb:     circuitbreaker.NewCircuitBreaker("esplora"),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *esplora) healthCheck() error {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	status, resp, err := httputil.NewHTTPRequest(
		context.Background(), "GET", url, "", nil,
	)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s", resp)
	}
	return nil
}

// get routes the request through the circuit breaker so that a flapping
// endpoint stops being hammered once the failure ratio trips it.
func (e *esplora) get(ctx context.Context, url string) (string, error) {
	resp, err := e.cb.Execute(func() (interface{}, error) {
		status, body, err := httputil.NewHTTPRequest(ctx, "GET", url, "", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
		}
		if status == http.StatusNotFound {
			// Not an upstream failure, must not trip the breaker.
			return "", nil
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(
				"%w: status %d: %s", explorer.ErrRequestFailed, status, body,
			)
		}
		return body, nil
	})
	if err != nil {
		return "", err
	}

	body := resp.(string)
	if body == "" {
		return "", explorer.ErrNotFound
	}
	return body, nil
}
