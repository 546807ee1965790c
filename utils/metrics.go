package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LLM request outcomes.
const (
	LLMOutcomeOK      = "ok"
	LLMOutcomeError   = "error"
	LLMOutcomeSkipped = "skipped"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lexassist_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexassist_chat_messages_total",
		Help: "User chat messages accepted.",
	})

	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexassist_llm_requests_total",
		Help: "LLM generation requests by outcome.",
	}, []string{"outcome"})

	LicenseHoursConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexassist_license_hours_consumed_total",
		Help: "License hours debited by chat usage.",
	})

	ModerationFlagsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexassist_moderation_flags_total",
		Help: "Content flagged by the moderation screen, by severity.",
	}, []string{"severity"})
)
