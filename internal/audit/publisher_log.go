package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LogPublisher writes audit events to the process log. Used when Kafka is
// not configured (local/dev) and as the universal fallback in tests.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a log-backed publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	p.logger.InfoContext(ctx, "audit",
		"event_id", event.ID,
		"action", string(event.Action),
		"organization_id", event.OrganizationID,
		"subject", event.Subject,
		"actor_id", event.ActorID,
		"detail", event.Detail,
		"log_type", "audit",
	)
	return nil
}
