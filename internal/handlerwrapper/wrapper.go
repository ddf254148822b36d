// Package handlerwrapper adapts typed, transport-agnostic handlers to
// watermill message handlers.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey names the metadata entry that carries the topic an
// outgoing message must be published to.
const TopicMetadataKey = "topic"

// Result is one outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// Metrics is the subset of observability.Metrics the wrapper needs.
type Metrics interface {
	RecordHandlerAttempt(ctx context.Context, handler string)
	RecordHandlerSuccess(ctx context.Context, handler string)
	RecordHandlerFailure(ctx context.Context, handler string)
	RecordHandlerDuration(ctx context.Context, handler string, d time.Duration)
}

// WrapTransformingTyped decodes the JSON payload into T, runs handle, and
// encodes every Result as an outgoing message tagged with its topic and the
// inbound correlation id.
//
// Payloads that fail to decode are logged and acked; they would never
// succeed on redelivery. Handler errors are returned so the router nacks.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics Metrics,
	handle func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
		))
		defer span.End()

		correlationID := middleware.MessageCorrelationID(msg)
		logger := logger.With(
			slog.String("handler", handlerName),
			slog.String("message_id", msg.UUID),
			slog.String("correlation_id", correlationID),
		)

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
			start := time.Now()
			defer func() { metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start)) }()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message", slog.Any("error", err))
			span.SetStatus(codes.Error, "undecodable payload")
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, nil
		}

		results, err := handle(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(r, correlationID)
			if err != nil {
				span.RecordError(err)
				if metrics != nil {
					metrics.RecordHandlerFailure(ctx, handlerName)
				}
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		logger.DebugContext(ctx, "Handler completed", slog.Int("results", len(out)))
		return out, nil
	}
}

// NewMessage encodes r as a watermill message. An empty correlationID gets a
// fresh one.
func NewMessage(r Result, correlationID string) (*message.Message, error) {
	if r.Topic == "" {
		return nil, fmt.Errorf("result has no topic")
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}

	m := message.NewMessage(uuid.NewString(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(TopicMetadataKey, r.Topic)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	middleware.SetCorrelationID(correlationID, m)
	return m, nil
}
