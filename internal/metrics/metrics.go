package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reversi_active_sessions",
			Help: "Game sessions currently held in the registry",
		},
	)
	ConnectedUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reversi_connected_users",
			Help: "Users with an open websocket",
		},
	)
	MessagesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reversi_messages_total",
			Help: "Client messages processed, by type",
		},
		[]string{"type"},
	)
	MessageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reversi_message_errors_total",
			Help: "Error replies sent to clients, by code",
		},
		[]string{"code"},
	)
	MovesPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reversi_moves_total",
			Help: "Moves applied, by who played them",
		},
		[]string{"player"},
	)
	AuditJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reversi_audit_jobs_total",
			Help: "Persistence hook calls, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	SessionsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reversi_sessions_evicted_total",
			Help: "Idle sessions removed by the cleanup worker",
		},
	)
)

func init() {
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(ConnectedUsers)
	prometheus.MustRegister(MessagesHandled)
	prometheus.MustRegister(MessageErrors)
	prometheus.MustRegister(MovesPlayed)
	prometheus.MustRegister(AuditJobs)
	prometheus.MustRegister(SessionsEvicted)
}
