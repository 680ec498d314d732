// Package ats forwards accepted candidacies to the applicant tracking
// system shared with recruiting staff.
package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const userAgent = "topmx/top-assistant"

// Submission is one candidacy for the posting currently under discussion.
// Profile and routing fields come from the posting document; the tracker
// uses them to file the candidate under the right client.
type Submission struct {
	FirstName   string
	LastName    string
	Phone       string
	Notes       string
	ProfileType string
	Profile     string
	Department  string
	CorporateID string
	BusinessID  string
	ClientID    string
}

type candidate struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
	ProfileType string `json:"profile_type"`
	Profile     string `json:"profile"`
	Department  string `json:"department"`
	CorporateID string `json:"corporate_id"`
	BusinessID  string `json:"business_id"`
	ClientID    string `json:"client_id"`
}

type submitRequest struct {
	CatalogID  int         `json:"catalog_id"`
	Candidates []candidate `json:"candidates"`
}

// Client talks to the tracker's candidate intake endpoint. The catalog id
// is account-level configuration, not a per-posting value.
type Client struct {
	token     string
	catalogID int
	logger    *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token, apiURL string, catalogID int) *Client {
	return &Client{
		token:     token,
		catalogID: catalogID,
		logger:    logger,
		HTTPClient: &http.Client{
			Timeout: time.Second * 15,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
	}
}

// Submit registers one candidate. The tracker answers 200 or 201 on
// acceptance depending on deployment version.
func (c *Client) Submit(ctx context.Context, sub *Submission) error {
	payload := submitRequest{
		CatalogID: c.catalogID,
		Candidates: []candidate{{
			FirstName:   sub.FirstName,
			LastName:    sub.LastName,
			Phone:       sub.Phone,
			Notes:       sub.Notes,
			ProfileType: sub.ProfileType,
			Profile:     sub.Profile,
			Department:  sub.Department,
			CorporateID: sub.CorporateID,
			BusinessID:  sub.BusinessID,
			ClientID:    sub.ClientID,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/applications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(req)

	c.logger.Debug("submitting candidacy", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.ReadAll(resp.Body); err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	c.logger.Debug("candidacy accepted", zap.Int("status", resp.StatusCode))

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
}
