// Package tmdb is a small client for the parts of The Movie Database API used
// to build screenings: discover, movie details, credits and videos.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	apiBaseURL         = "https://api.themoviedb.org/3"
	defaultLanguage    = "fr-FR"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

// Client wraps HTTP access to the TMDB v3 API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	language    string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// APIError is returned when TMDB responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "tmdb api error"
	}
	return fmt.Sprintf("tmdb api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

type Option func(*Client)

func WithLanguage(language string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// NewClient creates a new API client authenticated with a v4 read access token.
// If httpClient is nil, a default client is used.
func NewClient(httpClient *http.Client, apiKey string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     apiBaseURL,
		apiKey:      apiKey,
		language:    defaultLanguage,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Discover returns the first page of popular movies currently in theaters or
// about to be released.
func (c *Client) Discover(ctx context.Context) ([]MovieRef, error) {
	query := url.Values{}
	query.Set("include_adult", "false")
	query.Set("include_video", "true")
	query.Set("language", "en-US")
	query.Set("page", "1")
	query.Set("sort_by", "popularity.desc")
	query.Set("with_release_type", "2|3")

	var page DiscoverPage
	if err := c.getJSON(ctx, c.baseURL+"/discover/movie?"+query.Encode(), &page); err != nil {
		return nil, err
	}

	return page.Results, nil
}

func (c *Client) GetMovieInfo(ctx context.Context, movieID int) (*MovieInfo, error) {
	var info MovieInfo
	if err := c.getJSON(ctx, c.movieEndpoint(movieID, ""), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) GetCredits(ctx context.Context, movieID int) (*Credits, error) {
	var credits Credits
	if err := c.getJSON(ctx, c.movieEndpoint(movieID, "/credits"), &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

func (c *Client) GetVideos(ctx context.Context, movieID int) (*Videos, error) {
	var videos Videos
	if err := c.getJSON(ctx, c.movieEndpoint(movieID, "/videos"), &videos); err != nil {
		return nil, err
	}
	return &videos, nil
}

func (c *Client) movieEndpoint(movieID int, suffix string) string {
	return fmt.Sprintf("%s/movie/%d%s?language=%s", c.baseURL, movieID, suffix, url.QueryEscape(c.language))
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
			_ = res.Body.Close()

			apiErr := &APIError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return apiErr
		}

		err = json.NewDecoder(res.Body).Decode(out)
		_ = res.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.retryBase << (attempt - 1)
	if delay <= 0 || delay > c.retryCap {
		return c.retryCap
	}
	return delay
}
