// Package provider fetches and reads hourly price history.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"signal-lab/internal/domain"
	"signal-lab/internal/observability"
)

// DefaultBaseURL is the CryptoCompare REST endpoint.
const DefaultBaseURL = "https://min-api.cryptocompare.com"

// MaxHistoryHours is the largest history a single histohour call returns.
const MaxHistoryHours = 2000

const providerName = "cryptocompare"

// ErrAPI is returned when CryptoCompare answers with "Response":"Error".
var ErrAPI = errors.New("cryptocompare api error")

// HTTPStatusError represents an error due to a non-200 HTTP status code.
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return "non-200 status code: " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// ClientOptions holds options for creating a new CryptoCompareClient.
type ClientOptions struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxElapsedTime time.Duration
	Logger         zerolog.Logger
	Metrics        *observability.Metrics
}

// CryptoCompareClient fetches hourly price history with rate limiting and retries.
type CryptoCompareClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	opts       ClientOptions
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// NewCryptoCompareClient creates a new client. Zero options take defaults.
func NewCryptoCompareClient(opts ClientOptions) *CryptoCompareClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 5
	}
	if opts.InitialBackoff == 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxElapsedTime == 0 {
		opts.MaxElapsedTime = 30 * time.Second
	}

	return &CryptoCompareClient{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RequestsPerSec)), opts.RequestsPerSec),
		opts:       opts,
		logger:     opts.Logger.With().Str("component", "cryptocompare_client").Logger(),
		metrics:    opts.Metrics,
	}
}

type histoResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		TimeFrom int64 `json:"TimeFrom"`
		TimeTo   int64 `json:"TimeTo"`
		Data     []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// FetchHourly returns up to hours+1 hourly closes for pair, oldest first.
func (c *CryptoCompareClient) FetchHourly(ctx context.Context, pair domain.Pair, hours int) ([]*domain.PriceSample, error) {
	if !pair.IsValid() {
		return nil, fmt.Errorf("invalid pair %q", pair.Label())
	}
	if hours < 1 || hours > MaxHistoryHours {
		return nil, fmt.Errorf("hours %d out of range [1, %d]", hours, MaxHistoryHours)
	}

	q := url.Values{}
	q.Set("fsym", pair.From)
	q.Set("tsym", pair.To)
	q.Set("limit", strconv.Itoa(hours))
	endpoint := c.baseURL + "/data/v2/histohour?" + q.Encode()

	c.logger.Debug().Str("pair", pair.Label()).Int("hours", hours).Msg("fetching hourly history")

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pair.Label(), err)
	}

	var resp histoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", pair.Label(), err)
	}
	if resp.Response == "Error" {
		return nil, fmt.Errorf("%w: %s: %s", ErrAPI, pair.Label(), resp.Message)
	}

	samples := make([]*domain.PriceSample, 0, len(resp.Data.Data))
	for _, p := range resp.Data.Data {
		samples = append(samples, &domain.PriceSample{
			Pair:        pair,
			TimestampMs: p.Time * 1000,
			Price:       p.Close,
		})
	}
	return samples, nil
}

// get performs a GET with rate limiting and exponential backoff.
// 5xx responses and transport errors are retried; other statuses are not.
func (c *CryptoCompareClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Apikey "+c.apiKey)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.RecordProviderRequest(providerName, time.Since(start).Seconds(), err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			c.metrics.RecordProviderRequest(providerName, time.Since(start).Seconds(), statusErr)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		body, err = io.ReadAll(resp.Body)
		c.metrics.RecordProviderRequest(providerName, time.Since(start).Seconds(), err)
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Dur("retry_in", wait).Msg("request failed, retrying")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff
	b.MaxElapsedTime = c.opts.MaxElapsedTime
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.opts.MaxRetries), ctx)

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}
