package events

import (
	"context"
	"log/slog"
)

// Publisher delivers events to whatever reacts to them (email,
// notifications). The engine publishes after commit and never waits on
// or fails because of delivery.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type logPublisher struct {
	log *slog.Logger
}

// NewLogPublisher returns a Publisher that writes events to the log.
// Stands in for the notification subsystem.
func NewLogPublisher(log *slog.Logger) Publisher {
	return &logPublisher{log: log}
}

func (p *logPublisher) Publish(_ context.Context, ev Event) {
	p.log.Info("domain event", "type", string(ev.EventType()), "event", ev)
}
