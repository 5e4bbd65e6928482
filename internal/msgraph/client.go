// Package msgraph retrieves calendar events and mail messages from the
// Microsoft Graph API as evidence signals.
package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timezone   string
}

// NewClient creates a Graph client from a bearer token. timezone is an
// IANA timezone name used for the calendar view; "" means UTC.
func NewClient(ctx context.Context, token, timezone string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		httpClient: oauth2.NewClient(ctx, ts),
		baseURL:    graphBaseURL,
		timezone:   timezone,
	}
}

// CalendarEvent represents a Microsoft Graph calendar event.
type CalendarEvent struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	BodyPreview string `json:"bodyPreview"`
	IsAllDay    bool   `json:"isAllDay"`
	IsCancelled bool   `json:"isCancelled"`
	Sensitivity string `json:"sensitivity"` // "normal", "personal", "private", "confidential"
	ShowAs      string `json:"showAs"`      // "free", "tentative", "busy", "oof", "workingElsewhere", "unknown"
	Start       struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"end"`
	Attendees []struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"attendees"`
}

// MailMessage represents a Microsoft Graph mail message.
type MailMessage struct {
	ID               string `json:"id"`
	Subject          string `json:"subject"`
	BodyPreview      string `json:"bodyPreview"`
	ReceivedDateTime string `json:"receivedDateTime"`
	From             struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ToRecipients []struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"toRecipients"`
}

// pagedResponse is the Graph API paged envelope.
type pagedResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// GetCalendarView fetches calendar events in [from, to) using the
// calendarView endpoint, following pagination.
func (c *Client) GetCalendarView(ctx context.Context, from, to time.Time) ([]CalendarEvent, error) {
	endpoint := fmt.Sprintf("%s/me/calendarView?startDateTime=%s&endDateTime=%s&$top=100",
		c.baseURL,
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)),
	)
	return collectPages[CalendarEvent](ctx, c, endpoint)
}

// GetMessages fetches mail messages received in [from, to), following
// pagination.
func (c *Client) GetMessages(ctx context.Context, from, to time.Time) ([]MailMessage, error) {
	filter := fmt.Sprintf("receivedDateTime ge %s and receivedDateTime lt %s",
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	)
	endpoint := fmt.Sprintf("%s/me/messages?$filter=%s&$top=100",
		c.baseURL,
		url.QueryEscape(filter),
	)
	return collectPages[MailMessage](ctx, c, endpoint)
}

// collectPages walks a paged Graph endpoint until the next link runs out.
func collectPages[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var all []T
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.timezone != "" {
			req.Header.Set("Prefer", fmt.Sprintf(`outlook.timezone="%s"`, c.timezone))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph API request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(body))
		}

		var page pagedResponse[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding graph response: %w", err)
		}

		all = append(all, page.Value...)
		endpoint = page.NextLink
	}
	return all, nil
}
