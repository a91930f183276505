// Package linkedin talks to LinkedIn over plain HTTP: the guest job search and
// posting endpoints for reading, the voyager API for dismissing.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-linkedin-sweeper/internal/browser"
	"go-linkedin-sweeper/internal/config"
	"go-linkedin-sweeper/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.linkedin.com"

	searchPath      = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	postingPath     = "/jobs-guest/jobs/api/jobPosting/"
	dismissPath     = "/voyager/api/voyagerJobsDashJobPostingRelevanceFeedback"
	userAgentHeader = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

type SearchQuery struct {
	Keywords string
	Location string
}

type Client struct {
	hc           *http.Client
	baseURL      string
	cookieHeader string
	csrfToken    string
	log          *zap.Logger
}

// NewClient builds a client authenticated with the given cookies. baseURL may
// be empty for the public site.
func NewClient(cookies []browser.Cookie, baseURL string, log *zap.Logger) (*Client, error) {
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: linkedin cookies", config.ErrMissingConfig)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		hc:           &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		cookieHeader: browser.HeaderValue(cookies),
		csrfToken:    browser.CSRFToken(cookies),
		log:          log,
	}
	if c.csrfToken == "" {
		log.Warn("JSESSIONID cookie missing, dismiss requests will likely be rejected")
	}
	return c, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgentHeader)
	req.Header.Set("Cookie", c.cookieHeader)
	return req, nil
}

// SearchJobs fetches one page of search results starting at offset start.
func (c *Client) SearchJobs(ctx context.Context, q SearchQuery, start int) ([]models.JobListing, error) {
	params := url.Values{}
	params.Set("keywords", q.Keywords)
	params.Set("location", q.Location)
	params.Set("start", strconv.Itoa(start))
	searchURL := c.baseURL + searchPath + "?" + params.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin search: %w", err)
	}
	defer res.Body.Close()

	// the guest endpoint answers 400 once start runs past the last result
	if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("linkedin search status %d", res.StatusCode)
	}

	jobs, err := parseSearchResults(res.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin search parse: %w", err)
	}
	c.log.Debug("fetched search page", zap.Int("start", start), zap.Int("jobs", len(jobs)))
	return jobs, nil
}

// FetchJobDescription returns the description text of a posting, "" if the
// posting has none.
func (c *Client) FetchJobDescription(ctx context.Context, jobID string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+postingPath+url.PathEscape(jobID), nil)
	if err != nil {
		return "", err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("linkedin posting %s: %w", jobID, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("linkedin posting %s status %d", jobID, res.StatusCode)
	}
	return parseDescription(res.Body)
}

type dismissRequest struct {
	JobPostingRelevanceFeedbackUrn string `json:"jobPostingRelevanceFeedbackUrn"`
	Channel                        string `json:"channel"`
	Dismissed                      bool   `json:"dismissed"`
}

// Dismiss marks the job as not interesting. It reports false with an error
// describing the response when LinkedIn does not answer 2xx.
func (c *Client) Dismiss(ctx context.Context, job models.JobListing, dismissURN string) (bool, error) {
	payload, err := json.Marshal(dismissRequest{
		JobPostingRelevanceFeedbackUrn: dismissURN,
		Channel:                        "JOB_SEARCH",
		Dismissed:                      true,
	})
	if err != nil {
		return false, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+dismissPath+"?action=dismiss", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.linkedin.normalized+json+2.1")
	req.Header.Set("csrf-token", c.csrfToken)
	req.Header.Set("x-restli-protocol-version", "2.0.0")

	res, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("dismiss %s: %w", job.JobID, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 200))
		return false, fmt.Errorf("dismiss %s: status %d: %s", job.JobID, res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return true, nil
}
