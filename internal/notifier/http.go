package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"example.com/workload/internal/correlation"
	"example.com/workload/internal/domain"
	"example.com/workload/internal/messaging"
)

// HTTPNotifier calls the workload API synchronously, guarded by a circuit
// breaker so a struggling aggregation service cannot drag down the
// profile-management side.
type HTTPNotifier struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
	token   string
}

// NewHTTPNotifier constructs an HTTPNotifier for the workload API at baseURL.
// The token is attached as a bearer credential on every call.
func NewHTTPNotifier(baseURL, token string, timeout time.Duration) *HTTPNotifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "workload-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &HTTPNotifier{
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// NotifyWorkloadChange posts the event to the workload API. Breaker-open,
// transport, and non-2xx failures all surface as ErrEventPublishFailed.
func (n *HTTPNotifier) NotifyWorkloadChange(ctx context.Context, trainer TrainerSnapshot, date domain.CivilDate, durationMinutes int, action domain.ActionType) error {
	ctx, corrID := correlation.Ensure(ctx)
	event := buildEvent(trainer, date, durationMinutes, action)

	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.post(ctx, corrID, event)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", messaging.ErrEventPublishFailed, err)
	}
	return nil
}

func (n *HTTPNotifier) post(ctx context.Context, corrID string, event domain.WorkloadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v1/workload", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(correlation.Header, corrID)
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("workload API returned %d", resp.StatusCode)
	}
	return nil
}
