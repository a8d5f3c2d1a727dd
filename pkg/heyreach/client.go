// Package heyreach wraps the HeyReach public API for pushing leads into
// campaign lists.
package heyreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Default base URL for the HeyReach public API.
const defaultBaseURL = "https://api.heyreach.io/api/public"

// defaultChunkSize is the maximum number of leads sent per request.
const defaultChunkSize = 100

// Client defines the HeyReach API operations used by this application.
type Client interface {
	AddLeadsToList(ctx context.Context, listID int, leads []Lead) (*AddResult, error)
	GetList(ctx context.Context, listID int) (*List, error)
	StopLeadInCampaign(ctx context.Context, campaignID int, profileURL string) error
	CheckAPIKey(ctx context.Context) error
}

// Lead is a single prospect pushed to a HeyReach list.
type Lead struct {
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	ProfileURL       string            `json:"profileUrl"`
	CompanyName      string            `json:"companyName,omitempty"`
	Position         string            `json:"position,omitempty"`
	EmailAddress     string            `json:"emailAddress,omitempty"`
	Location         string            `json:"location,omitempty"`
	Summary          string            `json:"summary,omitempty"`
	CustomUserFields []CustomUserField `json:"customUserFields,omitempty"`
}

// CustomUserField carries a named per-lead variable, such as the
// personalized first message used by the campaign sequence.
type CustomUserField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// addLeadsRequest is the body for POST /list/AddLeadsToListV2.
type addLeadsRequest struct {
	ListID int    `json:"listId"`
	Leads  []Lead `json:"leads"`
}

// addLeadsResponse is the response from POST /list/AddLeadsToListV2.
type addLeadsResponse struct {
	AddedLeadsCount  int `json:"addedLeadsCount"`
	FailedLeadsCount int `json:"failedLeadsCount"`
}

// AddResult summarizes an upload across all chunks.
type AddResult struct {
	Accepted int
	Failed   int
}

// List is a HeyReach lead list.
type List struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	TotalItems int    `json:"totalItemsCount"`
}

// APIError is returned when HeyReach responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("heyreach: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithChunkSize overrides the per-request lead chunk size.
func WithChunkSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithRateLimit overrides the default request rate (2 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey    string
	baseURL   string
	chunkSize int
	limiter   *rate.Limiter
	http      *http.Client
}

// NewClient creates a new HeyReach client. By default, API calls are
// throttled to 2 req/s and leads are uploaded in chunks of 100.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:    apiKey,
		baseURL:   defaultBaseURL,
		chunkSize: defaultChunkSize,
		limiter:   rate.NewLimiter(2, 1),
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// AddLeadsToList uploads leads in chunks and sums the per-chunk counts.
// A chunk that fails mid-batch returns the counts accumulated so far
// alongside the error, so callers can record partial progress.
func (c *httpClient) AddLeadsToList(ctx context.Context, listID int, leads []Lead) (*AddResult, error) {
	result := &AddResult{}
	for start := 0; start < len(leads); start += c.chunkSize {
		end := min(start+c.chunkSize, len(leads))

		if err := c.wait(ctx); err != nil {
			return result, eris.Wrap(err, "heyreach: rate limit")
		}

		var resp addLeadsResponse
		req := addLeadsRequest{ListID: listID, Leads: leads[start:end]}
		if err := c.post(ctx, "/list/AddLeadsToListV2", req, &resp); err != nil {
			return result, eris.Wrap(err, fmt.Sprintf("heyreach: add leads to list %d", listID))
		}
		result.Accepted += resp.AddedLeadsCount
		result.Failed += resp.FailedLeadsCount
	}
	return result, nil
}

func (c *httpClient) GetList(ctx context.Context, listID int) (*List, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "heyreach: rate limit")
	}
	var list List
	if err := c.get(ctx, fmt.Sprintf("/list/GetById?listId=%d", listID), &list); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("heyreach: get list %d", listID))
	}
	return &list, nil
}

// stopLeadRequest is the body for POST /campaign/StopLeadInCampaign.
type stopLeadRequest struct {
	CampaignID int    `json:"campaignId"`
	LeadURL    string `json:"leadUrl"`
}

// StopLeadInCampaign removes a lead from an active campaign sequence, for
// example after the lead replied.
func (c *httpClient) StopLeadInCampaign(ctx context.Context, campaignID int, profileURL string) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "heyreach: rate limit")
	}
	req := stopLeadRequest{CampaignID: campaignID, LeadURL: profileURL}
	if err := c.post(ctx, "/campaign/StopLeadInCampaign", req, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("heyreach: stop lead in campaign %d", campaignID))
	}
	return nil
}

// CheckAPIKey verifies the configured key against the auth endpoint.
func (c *httpClient) CheckAPIKey(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "heyreach: rate limit")
	}
	if err := c.get(ctx, "/auth/CheckApiKey", nil); err != nil {
		return eris.Wrap(err, "heyreach: check api key")
	}
	return nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return eris.Wrap(err, "decode response")
		}
	}
	return nil
}
