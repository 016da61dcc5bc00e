package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes cv.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Email        string         `json:"email"`
		Name         string         `json:"name"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Email:        event.Email,
		Name:         event.Name,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "cv.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserLogin publishes cv.user.login events.
func (p *EventPublisher) PublishUserLogin(ctx context.Context, event domain.UserLoginEvent) error {
	payload := struct {
		UserID   string         `json:"user_id"`
		LoginAt  time.Time      `json:"login_at"`
		IP       *string        `json:"ip_address,omitempty"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		UserID:   event.UserID,
		LoginAt:  event.LoginAt.UTC(),
		IP:       event.IP,
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "cv.user.login", event.UserID, event.LoginAt, payload)
}

// PublishTokenRevoked publishes cv.token.revoked events. The payload carries
// the token digest, never the raw token.
func (p *EventPublisher) PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		TokenHash string         `json:"token_hash"`
		RevokedAt time.Time      `json:"revoked_at"`
		ExpiresAt time.Time      `json:"expires_at"`
		Reason    string         `json:"reason,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		TokenHash: event.TokenHash,
		RevokedAt: event.RevokedAt.UTC(),
		ExpiresAt: event.ExpiresAt.UTC(),
		Reason:    event.Reason,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "cv.token.revoked", event.UserID, event.RevokedAt, payload)
}

// PublishResumeChanged publishes cv.resume.<action> events.
func (p *EventPublisher) PublishResumeChanged(ctx context.Context, event domain.ResumeChangedEvent) error {
	payload := struct {
		ResumeID  string         `json:"resume_id"`
		UserID    string         `json:"user_id"`
		Action    string         `json:"action"`
		ResumeVer int64          `json:"resume_version"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		ResumeID:  event.ResumeID,
		UserID:    event.UserID,
		Action:    event.Action,
		ResumeVer: event.Version,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	eventType := fmt.Sprintf("cv.resume.%s", event.Action)
	return p.publish(ctx, event.EventID, eventType, event.UserID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
