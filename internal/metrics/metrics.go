// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package metrics exports signing session counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Armor-Network/armor/internal/hardware"
)

const namespace = "armor"

// Observer counts session lifecycle events. It implements hardware.Observer.
type Observer struct {
	started    *prometheus.CounterVec
	finished   *prometheus.CounterVec
	aborted    *prometheus.CounterVec
	mismatches *prometheus.CounterVec
	fees       prometheus.Counter
}

var _ hardware.Observer = (*Observer)(nil)

// New registers the session metrics with reg.
func New(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		started: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "started_total",
				Help:      "Signing sessions started",
			},
			[]string{"kind"},
		),
		finished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "finished_total",
				Help:      "Signing sessions that produced every response",
			},
			[]string{"kind"},
		),
		aborted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "aborted_total",
				Help:      "Signing sessions aborted by an error",
			},
			// reason: the hardware error class
			[]string{"kind", "reason"},
		),
		mismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "mismatches_total",
				Help:      "Operations where the proxy device disagreed or failed",
			},
			[]string{"operation"},
		),
		fees: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "fees_total",
				Help:      "Sum of fees of signed transactions, in atomic units",
			},
		),
	}
}

func (o *Observer) SessionStarted(kind string) {
	o.started.WithLabelValues(kind).Inc()
}

func (o *Observer) SessionFinished(info hardware.SessionInfo) {
	o.finished.WithLabelValues(info.Kind).Inc()
	if info.Kind == hardware.KindTransaction {
		o.fees.Add(float64(info.Fee))
	}
}

func (o *Observer) SessionAborted(kind string, err error) {
	o.aborted.WithLabelValues(kind, Reason(err)).Inc()
}

func (o *Observer) ProxyMismatch(op string) {
	o.mismatches.WithLabelValues(op).Inc()
}

var reasons = []struct {
	err  error
	name string
}{
	{hardware.ErrProtocolOrder, "protocol_order"},
	{hardware.ErrAmountOverflow, "amount_overflow"},
	{hardware.ErrNegativeFee, "negative_fee"},
	{hardware.ErrInconsistentDestination, "inconsistent_destination"},
	{hardware.ErrDeviceMismatch, "device_mismatch"},
	{hardware.ErrInvariant, "invariant"},
	{hardware.ErrInvalidArgument, "invalid_argument"},
	{hardware.ErrUserRejected, "user_rejected"},
	{hardware.ErrSessionReplaced, "replaced"},
}

// Reason names the hardware error class of err for the aborted counter.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "other"
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
