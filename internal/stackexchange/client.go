// Package stackexchange is a minimal client for the Stack Exchange API:
// question search and answer lookup by ID.
package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/qa"
)

const (
	DefaultBaseURL      = "https://api.stackexchange.com/2.2/"
	DefaultSite         = "serverfault"
	DefaultSearchFilter = "!bDxS)Rni*ko3Nm"
	DefaultAnswerFilter = "!-.AG)rCVNMau"
	DefaultPageSize     = 30
	DefaultTimeout      = 30 * time.Second

	// maxIDsPerRequest is the API's cap on semicolon-joined IDs.
	maxIDsPerRequest = 100
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	Site         string
	Key          string // Optional app key; raises the daily quota.
	SearchFilter string
	AnswerFilter string
	Timeout      time.Duration
}

// Client talks to the Stack Exchange API. It does not retry; any
// non-success response is returned as a *TransportError.
type Client struct {
	http *http.Client
	cfg  Config
	log  *slog.Logger
}

// New creates a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Site == "" {
		cfg.Site = DefaultSite
	}
	if cfg.SearchFilter == "" {
		cfg.SearchFilter = DefaultSearchFilter
	}
	if cfg.AnswerFilter == "" {
		cfg.AnswerFilter = DefaultAnswerFilter
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
		log:  logging.New("stackexchange"),
	}
}

// SearchParams selects a page of search results.
type SearchParams struct {
	Query    string
	Page     int
	PageSize int
	Accepted bool // Only questions with an accepted answer
}

// SearchResult is one page of questions.
type SearchResult struct {
	Items          []qa.Question `json:"items"`
	HasMore        bool          `json:"has_more"`
	QuotaRemaining int           `json:"quota_remaining"`
}

type answersResponse struct {
	Items          []qa.Answer `json:"items"`
	HasMore        bool        `json:"has_more"`
	QuotaRemaining int         `json:"quota_remaining"`
}

type apiError struct {
	ErrorID      int    `json:"error_id"`
	ErrorName    string `json:"error_name"`
	ErrorMessage string `json:"error_message"`
}

// Search runs an advanced search ordered by relevance. An empty query
// returns arbitrary questions.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(p.Page))
	params.Set("pagesize", strconv.Itoa(p.PageSize))
	params.Set("order", "desc")
	params.Set("sort", "relevance")
	if p.Accepted {
		params.Set("accepted", "True")
	}
	params.Set("site", c.cfg.Site)
	params.Set("filter", c.cfg.SearchFilter)
	if q := strings.TrimSpace(p.Query); q != "" {
		params.Set("q", q)
		params.Set("title", q)
	}

	c.log.Info("finding questions", "query", p.Query, "page", p.Page, "page_size", p.PageSize)

	var res SearchResult
	if err := c.get(ctx, "search", "search/advanced", params, &res); err != nil {
		return nil, err
	}
	c.log.Info("search done", "items", len(res.Items), "quota_remaining", res.QuotaRemaining)
	return &res, nil
}

// Answers fetches answer bodies by ID. IDs are requested in batches of
// the API maximum, one request at a time.
func (c *Client) Answers(ctx context.Context, ids []int64) ([]qa.Answer, error) {
	var all []qa.Answer
	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := min(start+maxIDsPerRequest, len(ids))

		parts := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			parts = append(parts, strconv.FormatInt(id, 10))
		}

		params := url.Values{}
		params.Set("order", "desc")
		params.Set("sort", "activity")
		params.Set("site", c.cfg.Site)
		params.Set("filter", c.cfg.AnswerFilter)
		params.Set("pagesize", strconv.Itoa(maxIDsPerRequest))

		var res answersResponse
		if err := c.get(ctx, "answers", "answers/"+strings.Join(parts, ";"), params, &res); err != nil {
			return nil, err
		}
		c.log.Info("answers fetched", "items", len(res.Items), "quota_remaining", res.QuotaRemaining)
		all = append(all, res.Items...)
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if c.cfg.Key != "" {
		params.Set("key", c.cfg.Key)
	}
	apiURL := c.cfg.BaseURL + path + "?" + params.Encode()
	c.log.Debug("request", "op", op, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorMessage != "" {
			msg = fmt.Sprintf("%s: %s", apiErr.ErrorName, apiErr.ErrorMessage)
		}
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
