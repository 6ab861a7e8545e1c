// Package events publishes broken-link events over NATS JetStream for
// downstream automation (issue creation, dashboards). The engine never
// depends on it; publishing is wired by the CLI when configured.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/errors"
	"git.home.luguber.info/inful/linkcheck/internal/logfields"
)

// BrokenLinkEvent is the wire form of one broken link found in a run.
type BrokenLinkEvent struct {
	RunID      string    `json:"run_id"`
	Root       string    `json:"root"`
	Href       string    `json:"href"`
	Text       string    `json:"text,omitempty"`
	SourceFile string    `json:"source_file"`
	LinkType   string    `json:"link_type"`
	Reason     string    `json:"reason"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher manages the NATS connection used for broken-link events.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS and prepares a JetStream context.
func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").WithContext("url", cfg.URL)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create JetStream context")
	}

	slog.Info("Event publisher connected", logfields.URL(cfg.URL), slog.String("subject", cfg.Subject))

	return &Publisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// PublishResult publishes one event per broken link in the result.
// Publish failures are logged and counted, never fatal.
func (p *Publisher) PublishResult(ctx context.Context, result *checker.Result) {
	for _, bl := range result.BrokenLinks {
		event := BrokenLinkEvent{
			RunID:      result.RunID,
			Root:       result.Root,
			Href:       bl.Href,
			Text:       bl.Text,
			SourceFile: bl.SourceFile,
			LinkType:   string(bl.Type),
			Reason:     string(bl.Reason),
			Error:      bl.Error,
			Timestamp:  time.Now(),
		}
		if err := p.publish(ctx, event); err != nil {
			slog.Error("Failed to publish broken link event",
				logfields.URL(bl.Href),
				logfields.Source(bl.SourceFile),
				logfields.Error(err))
		}
	}
}

func (p *Publisher) publish(ctx context.Context, event BrokenLinkEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal event")
	}

	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish event")
	}

	slog.Debug("Published broken link event",
		logfields.URL(event.Href),
		logfields.Source(event.SourceFile))
	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
