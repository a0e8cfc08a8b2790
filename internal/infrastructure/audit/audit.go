package audit

import (
	"context"

	"reviewpilot-core/internal/domain/events"
	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"
	"reviewpilot-core/internal/metrics"

	"github.com/sirupsen/logrus"
)

// EventTypes lists every event the audit trail subscribes to
var EventTypes = []string{
	user.EventTypeUserSynced,
	user.EventTypeUserDeleted,
	user.EventTypeGitHubConnected,
	user.EventTypeGitHubDisconnected,
	repo.EventTypeRepositorySynced,
	repo.EventTypeRepositoryRemoved,
}

// Register subscribes the log and metrics handlers to every audited event type
func Register(d *events.Dispatcher) {
	d.RegisterAll(EventTypes, LogHandler(logrus.StandardLogger()))
	d.RegisterAll(EventTypes, MetricsHandler)
}

// LogHandler writes one structured line per event
func LogHandler(logger logrus.FieldLogger) events.EventHandler {
	return func(_ context.Context, e events.DomainEvent) error {
		fields := logrus.Fields{
			"event":       e.EventType(),
			"eventId":     e.EventID(),
			"aggregateId": e.AggregateID(),
		}
		if a, ok := e.(events.Attributed); ok {
			for k, v := range a.Attributes() {
				fields[k] = v
			}
		}
		logger.WithFields(fields).Info("domain event")
		return nil
	}
}

// MetricsHandler counts events by type
func MetricsHandler(_ context.Context, e events.DomainEvent) error {
	metrics.DomainEvents.WithLabelValues(e.EventType()).Inc()
	if synced, ok := e.(*repo.RepositoriesSyncedEvent); ok {
		metrics.SyncedRepositories.Add(float64(synced.RepositoryCount))
	}
	return nil
}
