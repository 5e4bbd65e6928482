package msgraph

import (
	"context"
	"fmt"
	"time"

	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

// Source adapts the Graph client into an evidence signal source covering
// both calendar events and mail messages.
type Source struct {
	client *Client
}

// NewSource wraps a Graph client as a signal source.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Name identifies the source in warnings and logs.
func (s *Source) Name() string {
	return "msgraph"
}

// ListSignals returns the window's calendar events and mail messages as
// unified evidence signals.
func (s *Source) ListSignals(ctx context.Context, from, to time.Time) ([]models.EvidenceSignal, error) {
	end := to.AddDate(0, 0, 1)

	events, err := s.client.GetCalendarView(ctx, from, end)
	if err != nil {
		return nil, fmt.Errorf("calendar view failed: %w", err)
	}

	messages, err := s.client.GetMessages(ctx, from, end)
	if err != nil {
		return nil, fmt.Errorf("message list failed: %w", err)
	}

	var signals []models.EvidenceSignal
	for _, event := range events {
		signal, ok := eventSignal(event, s.client.timezone)
		if !ok {
			continue
		}
		signals = append(signals, signal)
	}
	for _, message := range messages {
		signal, ok := messageSignal(message)
		if !ok {
			continue
		}
		signals = append(signals, signal)
	}

	logging.Debug("collected graph signals",
		"events", len(events),
		"messages", len(messages),
		"signals", len(signals))
	return signals, nil
}

// shouldSkipEvent filters events that carry no work evidence.
func shouldSkipEvent(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// eventSignal converts a calendar event into an evidence signal.
func eventSignal(event CalendarEvent, timezone string) (models.EvidenceSignal, bool) {
	if shouldSkipEvent(event) {
		return models.EvidenceSignal{}, false
	}

	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		logging.Warn("skipping event with unparsable start", "subject", event.Subject, "error", err)
		return models.EvidenceSignal{}, false
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		logging.Warn("skipping event with unparsable end", "subject", event.Subject, "error", err)
		return models.EvidenceSignal{}, false
	}

	var participants []string
	for _, attendee := range event.Attendees {
		if attendee.EmailAddress.Address != "" {
			participants = append(participants, attendee.EmailAddress.Address)
		}
	}

	return models.EvidenceSignal{
		Date:         start,
		Kind:         models.SignalCalendar,
		Title:        event.Subject,
		Body:         event.BodyPreview,
		Participants: participants,
		Duration:     end.Sub(start),
	}, true
}

// messageSignal converts a mail message into an evidence signal.
func messageSignal(message MailMessage) (models.EvidenceSignal, bool) {
	received, err := time.Parse(time.RFC3339, message.ReceivedDateTime)
	if err != nil {
		logging.Warn("skipping message with unparsable date", "subject", message.Subject, "error", err)
		return models.EvidenceSignal{}, false
	}

	var participants []string
	if message.From.EmailAddress.Address != "" {
		participants = append(participants, message.From.EmailAddress.Address)
	}
	for _, recipient := range message.ToRecipients {
		if recipient.EmailAddress.Address != "" {
			participants = append(participants, recipient.EmailAddress.Address)
		}
	}

	return models.EvidenceSignal{
		Date:         received,
		Kind:         models.SignalEmail,
		Title:        message.Subject,
		Body:         message.BodyPreview,
		Participants: participants,
	}, true
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone
// suffix when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	// Try RFC3339 first (includes timezone offset).
	if t, err := time.Parse(time.RFC3339, dt); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	// Graph returns fractional seconds: "2026-02-27T09:00:00.0000000"
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}
