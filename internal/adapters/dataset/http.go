package dataset

// http.go: descarga de datasets remotos con rate limiting, retries y
// circuit breaker. Los datasets regionales se publican como CSV estáticos;
// varias regiones suelen venir del mismo host.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 5
	defaultBurst      = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	// 64 MiB: los datasets regionales pesan ~5 MiB.
	maxBodyBytes = 64 << 20
)

// errServer marca respuestas que merecen retry.
var errServer = errors.New("server error")

// HTTPSource implementa ports.DatasetSource para URLs http(s).
type HTTPSource struct {
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	retryWait time.Duration
}

// NewHTTPSource crea un loader HTTP. ratePerSec <= 0 usa el default.
func NewHTTPSource(ratePerSec float64, burst int, timeout time.Duration) *HTTPSource {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSource{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "dataset-http",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				// Un 404 o un schema inválido no indica que el host esté caído.
				return err == nil || errors.Is(err, domain.ErrDataSourceMissing) || errors.Is(err, domain.ErrSchemaMismatch)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		retryWait: baseRetryWait,
	}
}

// Load descarga y parsea el CSV en url.
func (s *HTTPSource) Load(ctx context.Context, url string) ([]domain.Site, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		body, err := s.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return ParseCSV(bytes.NewReader(body))
	})
	if err != nil {
		return nil, fmt.Errorf("dataset.HTTPSource.Load %q: %w", url, err)
	}
	return out.([]domain.Site), nil
}

// fetch hace un GET con rate limiting y backoff exponencial.
func (s *HTTPSource) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			s.sleep(ctx, attempt-1)
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := s.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, domain.ErrDataSourceMissing) || ctx.Err() != nil {
			return nil, err
		}
		var statusErr *clientError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		lastErr = err
		slog.Warn("dataset download failed, retrying", "url", url, "attempt", attempt+1, "err", err)
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// clientError es un 4xx distinto de 404/429: no se reintenta.
type clientError struct {
	status int
	body   string
}

func (e *clientError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.status, e.body)
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("status 404: %w", domain.ErrDataSourceMissing)
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("rate limited by dataset host", "url", url)
		return nil, fmt.Errorf("status 429: %w", errServer)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, errServer)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &clientError{status: resp.StatusCode, body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// sleep espera con backoff exponencial, respetando el contexto.
func (s *HTTPSource) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * s.retryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
