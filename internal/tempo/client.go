// Package tempo is the worklog sink client: it creates, updates, and
// deletes worklogs and exposes work attributes and billing accounts.
package tempo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ptomasek/tally/internal/config"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

// accountOpen is the sink's status value for a usable billing account.
const accountOpen = "OPEN"

// Client talks to the time-tracking service's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	worker     string
}

// NewClient creates a worklog sink client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateTempoConfig(cfg); err != nil {
		return nil, err
	}

	logging.Debug("tempo client initialized",
		"url", cfg.Tempo.URL,
		"worker", cfg.Tempo.Worker,
		"token", logging.MaskSensitive(cfg.Tempo.Token))

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.Tempo.URL, "/"),
		token:      cfg.Tempo.Token,
		worker:     cfg.Tempo.Worker,
	}, nil
}

// worklogPayload is the wire shape of a worklog create/update request.
type worklogPayload struct {
	IssueKey         string `json:"issueKey"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	StartDate        string `json:"startDate"`
	Description      string `json:"description"`
	Worker           string `json:"worker"`
	AccountKey       string `json:"accountKey,omitempty"`
}

// worklogResponse is the wire shape of a created worklog.
type worklogResponse struct {
	ID int `json:"tempoWorklogId"`
}

func payloadFor(worker string, worklog models.Worklog) worklogPayload {
	return worklogPayload{
		IssueKey:         worklog.IssueKey,
		TimeSpentSeconds: int(worklog.Hours * 3600),
		StartDate:        worklog.Date.Format("2006-01-02"),
		Description:      worklog.Description,
		Worker:           worker,
		AccountKey:       worklog.AccountKey,
	}
}

// CreateWorklog creates one worklog and returns its id. Failures are
// returned as *models.WorklogError so callers can branch on the kind.
func (c *Client) CreateWorklog(ctx context.Context, worklog models.Worklog) (string, error) {
	if worklog.Hours <= 0 {
		return "", fmt.Errorf("worklog hours must be positive, got %v", worklog.Hours)
	}

	var created worklogResponse
	err := c.do(ctx, http.MethodPost, "/worklogs", payloadFor(c.worker, worklog), &created)
	if err != nil {
		return "", err
	}

	logging.Debug("created worklog",
		"id", created.ID,
		"issue", worklog.IssueKey,
		"hours", worklog.Hours)
	return fmt.Sprintf("%d", created.ID), nil
}

// UpdateWorklog replaces the fields of an existing worklog.
func (c *Client) UpdateWorklog(ctx context.Context, id string, worklog models.Worklog) error {
	return c.do(ctx, http.MethodPut, "/worklogs/"+url.PathEscape(id), payloadFor(c.worker, worklog), nil)
}

// DeleteWorklog removes an existing worklog.
func (c *Client) DeleteWorklog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/worklogs/"+url.PathEscape(id), nil, nil)
}

// ListWorkAttributes returns the attribute definitions worklogs may carry.
func (c *Client) ListWorkAttributes(ctx context.Context) ([]models.WorkAttribute, error) {
	var attributes []models.WorkAttribute
	if err := c.do(ctx, http.MethodGet, "/work-attributes", nil, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

// ListAccounts returns the billing accounts linked to a project.
func (c *Client) ListAccounts(ctx context.Context, projectKey string) ([]models.Account, error) {
	var accounts []models.Account
	path := "/accounts?projectKey=" + url.QueryEscape(projectKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindActiveAccount returns the first open account of a project, or ""
// when the project has none.
func (c *Client) FindActiveAccount(ctx context.Context, projectKey string) (string, error) {
	accounts, err := c.ListAccounts(ctx, projectKey)
	if err != nil {
		return "", err
	}
	for _, account := range accounts {
		if account.Status == accountOpen {
			return account.Key, nil
		}
	}
	return "", nil
}

// do executes one request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("worklog sink request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyError(resp.StatusCode, responseBody)
	}

	if out != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
