// Package audit records lifecycle events for domain and link mutations.
// Events flow to Kafka when brokers are configured; otherwise they land in
// the process log. Emission is best-effort and never blocks or fails the
// mutation that produced it.
package audit

import (
	"context"
	"time"
)

// Action identifies what happened.
type Action string

const (
	DomainCreated  Action = "domain.created"
	DomainVerified Action = "domain.verified"
	DomainDeleted  Action = "domain.deleted"
	LinkCreated    Action = "link.created"
	LinkUpdated    Action = "link.updated"
	LinkDeleted    Action = "link.deleted"
)

// Event is one audit record.
type Event struct {
	ID             string    `json:"id"`
	Action         Action    `json:"action"`
	OrganizationID string    `json:"organization_id"`
	Subject        string    `json:"subject"`
	ActorID        string    `json:"actor_id,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher emits audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
