// Package metrics holds the Prometheus collectors for the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskbot"

// Metrics groups the bot's collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	// CommandsTotal labels: command (start, list, ...), outcome (ok, denied, invalid, failed).
	CommandsTotal *prometheus.CounterVec
	// ReminderFiringsTotal labels: outcome (sent, no_operator, failed).
	ReminderFiringsTotal *prometheus.CounterVec
	// SendErrorsTotal counts failed outbound messages.
	SendErrorsTotal prometheus.Counter
}

// New creates a private registry and registers all collectors on it.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of chat commands handled, by command and outcome.",
			},
			[]string{"command", "outcome"},
		),
		ReminderFiringsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminder_firings_total",
				Help:      "Total number of reminder digest firings, by outcome.",
			},
			[]string{"outcome"},
		),
		SendErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Total number of outbound messages that failed to send.",
		}),
	}
	m.registry.MustRegister(m.CommandsTotal, m.ReminderFiringsTotal, m.SendErrorsTotal)
	return m
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Command(command, outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) Firing(outcome string) {
	if m == nil {
		return
	}
	m.ReminderFiringsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SendError() {
	if m == nil {
		return
	}
	m.SendErrorsTotal.Inc()
}
