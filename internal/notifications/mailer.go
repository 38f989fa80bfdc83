package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

const (
	envelopeVersion       = 1
	defaultPublishTimeout = 10 * time.Second
)

// MailKind identifies the template a downstream mail worker renders.
type MailKind string

const (
	MailPasswordReset        MailKind = "password_reset"
	MailPasswordResetConfirm MailKind = "password_reset_confirmation"
)

// MailRequest is handed to the mail worker. ResetURL carries the raw reset
// token and must not be logged.
type MailRequest struct {
	Kind        MailKind  `json:"kind"`
	To          string    `json:"to"`
	DisplayName string    `json:"displayName,omitempty"`
	ResetURL    string    `json:"resetUrl,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// Mailer dispatches mail requests.
type Mailer interface {
	Send(ctx context.Context, req MailRequest) error
}

type envelope struct {
	Version    int         `json:"version"`
	EventID    string      `json:"eventId"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       MailRequest `json:"data"`
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// PubSubMailer publishes mail requests to a Pub/Sub topic.
type PubSubMailer struct {
	pub  publisher
	logg *logger.Logger
	now  func() time.Time
}

func NewPubSubMailer(p *gcppubsub.Publisher, logg *logger.Logger) (*PubSubMailer, error) {
	if p == nil {
		return nil, fmt.Errorf("mail publisher required")
	}
	return newPubSubMailer(&gcpPublisher{Publisher: p}, logg), nil
}

func newPubSubMailer(p publisher, logg *logger.Logger) *PubSubMailer {
	return &PubSubMailer{pub: p, logg: logg, now: time.Now}
}

func (m *PubSubMailer) Send(ctx context.Context, req MailRequest) error {
	env := envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		OccurredAt: m.now().UTC(),
		Data:       req,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":   env.EventID,
			"event_type": string(req.Kind),
			"created_at": env.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := m.pub.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	serverID, err := result.Get(publishCtx)
	if err != nil {
		return fmt.Errorf("publish mail request: %w", err)
	}
	if m.logg != nil {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"event_id":   env.EventID,
			"event_type": string(req.Kind),
			"message_id": serverID,
		})
		m.logg.Info(logCtx, "mail request published")
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}

// LogMailer records mail requests without sending them. Used when no mail topic is configured.
type LogMailer struct {
	logg *logger.Logger
}

func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, req MailRequest) error {
	if m.logg == nil {
		return nil
	}
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"event_type": string(req.Kind),
		"to":         req.To,
	})
	m.logg.Warn(logCtx, "mail topic not configured; mail request dropped")
	return nil
}
