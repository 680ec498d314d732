// Package jobindex is the client for the posting index service, the HTTP
// facade over the catalog of open positions. All lookups and listings the
// conversation needs go through it.
package jobindex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent = "topmx/top-assistant"

	// DefaultPageSize is the listing batch shown per discovery turn.
	DefaultPageSize = 10

	// defaultMaxPageSize caps how many postings one listing call may ask
	// for, whatever the caller passes.
	defaultMaxPageSize = 50
)

type Client struct {
	token       string
	logger      *zap.Logger
	HTTPClient  *http.Client
	UserAgent   string
	APIURL      string
	MaxPageSize int
}

func New(logger *zap.Logger, token, apiURL string) *Client {
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:      logger,
		UserAgent:   userAgent,
		MaxPageSize: defaultMaxPageSize,
	}
}

// GetJobByID fetches one posting by catalog id. The index echoes the id of
// the posting it found; a reply for a different id is treated as a failed
// lookup, not as a result.
func (c *Client) GetJobByID(ctx context.Context, id string) (*Job, error) {
	var fields map[string]interface{}
	err := c.postJSON(ctx, c.APIURL+"/tool/search_by_id_vacante", map[string]string{"id_vacante": id}, &fields)
	if err != nil {
		return nil, err
	}

	job, err := decodeJob(fields)
	if err != nil {
		return nil, err
	}

	if job.ID != id {
		return nil, fmt.Errorf("index returned posting %q for requested id %q", job.ID, id)
	}

	return job, nil
}

// GetJobByAdID fetches the posting an ad campaign points at.
func (c *Client) GetJobByAdID(ctx context.Context, adID string) (*Job, error) {
	var fields map[string]interface{}
	err := c.postJSON(ctx, c.APIURL+"/tool/search_by_ad_id", map[string]string{"ad_id": adID}, &fields)
	if err != nil {
		return nil, err
	}

	return decodeJob(fields)
}

// ListAvailable fetches one page of open postings. The limit is clamped to
// the client's configured maximum.
func (c *Client) ListAvailable(ctx context.Context, offset, limit int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if c.MaxPageSize > 0 && limit > c.MaxPageSize {
		limit = c.MaxPageSize
	}

	var resp listResponse
	err := c.postJSON(ctx, c.APIURL+"/tool/search_available_vacancies", map[string]int{
		"offset": offset,
		"limit":  limit,
	}, &resp)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Jobs:       &Jobs{},
		Total:      resp.Total,
		Offset:     resp.Offset,
		Limit:      resp.Limit,
		HasMore:    resp.HasMore,
		NextOffset: resp.NextOffset,
	}

	for _, fields := range resp.Results {
		job, err := decodeJob(fields)
		if err != nil {
			return nil, err
		}
		page.Jobs.Items = append(page.Jobs.Items, job)
	}

	c.logger.Debug("listed postings from index",
		zap.Int("returned", page.Jobs.Len()),
		zap.Int("total", page.Total),
		zap.Bool("has_more", page.HasMore),
	)

	return page, nil
}

// Status checks the index health endpoint.
func (c *Client) Status(ctx context.Context) error {
	return c.getJSON(ctx, c.APIURL+"/status", nil)
}
