package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// QuotesStream captures every quotes.> subject when the bus runs on JetStream.
var QuotesStream = jetstream.StreamConfig{
	Name:      "QUOTES",
	Subjects:  []string{"quotes.>"},
	Retention: jetstream.LimitsPolicy,
	Storage:   jetstream.FileStorage,
}

// EnsureStream creates cfg on the server unless a stream of that name
// already exists.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg jetstream.StreamConfig, logger *slog.Logger) error {
	if !isValidStreamName(cfg.Name) {
		return fmt.Errorf("invalid stream name %q", cfg.Name)
	}

	_, err := js.Stream(ctx, cfg.Name)
	if err == nil {
		logger.DebugContext(ctx, "JetStream stream exists", slog.String("stream", cfg.Name))
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to check stream %s: %w", cfg.Name, err)
	}

	if _, err := js.CreateStream(ctx, cfg); err != nil {
		logger.ErrorContext(ctx, "Failed to create JetStream stream",
			slog.String("stream", cfg.Name),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
	}
	logger.InfoContext(ctx, "Created JetStream stream",
		slog.String("stream", cfg.Name),
		slog.String("subjects", strings.Join(cfg.Subjects, ",")),
	)
	return nil
}

// provisionStream dials once to make sure QuotesStream exists before the
// watermill subscriber binds its consumers.
func provisionStream(ctx context.Context, url string, options []nc.Option, logger *slog.Logger) error {
	conn, err := nc.Connect(url, options...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return EnsureStream(ctx, js, QuotesStream, logger)
}

// isValidStreamName reports whether name is a legal JetStream stream name:
// non-empty, alphanumerics, hyphens and underscores, no leading or trailing
// hyphen.
func isValidStreamName(name string) bool {
	if name == "" || name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	for _, r := range name {
		if !isValidRune(r) {
			return false
		}
	}
	return true
}

func isValidRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
