package emit

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject run notifications publish to.
const DefaultSubject = "structscan.run.complete"

// RunNotification is the message published after each completed run.
// Consumers re-fetch the manifest or cache entries keyed by fingerprint.
type RunNotification struct {
	RunID       string `json:"run_id"`
	Fingerprint string `json:"fingerprint"`
	Items       int    `json:"items"`
}

// Publisher sends run notifications over NATS.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a publisher. A nil connection disables publishing;
// every Publish becomes a no-op (graceful degradation).
func NewPublisher(nc *nats.Conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{nc: nc, subject: subject}
}

// Publish announces a completed run.
func (p *Publisher) Publish(m *Manifest) error {
	if p == nil || p.nc == nil {
		return nil // Skip publishing if no NATS connection (graceful degradation)
	}

	data, err := json.Marshal(RunNotification{
		RunID:       m.RunID,
		Fingerprint: m.Fingerprint,
		Items:       m.Total(),
	})
	if err != nil {
		return fmt.Errorf("encoding run notification: %w", err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing run notification: %w", err)
	}
	return nil
}
