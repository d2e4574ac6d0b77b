// Copyright (c) 2019 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routeagent

import (
	"github.com/ligato/cn-infra/logging"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contiv/vpp-route-agent/plugins/routeagent/vppcalls"
)

const (
	metricsNamespace = "routeagent"
	nodeLabel        = "node"
	outcomeLabel     = "outcome"
	errorLabel       = "error"

	eventsMetric   = "events_total"
	errorsMetric   = "errors_total"
	durationMetric = "reconcile_duration_seconds"
)

// StatsCollector exports reconciliation outcomes as Prometheus metrics.
type StatsCollector struct {
	Log        logging.Logger
	NodeName   string
	Registerer prometheus.Registerer

	events   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Histogram
}

// Init creates and registers the metrics.
func (sc *StatsCollector) Init() error {
	constLabels := prometheus.Labels{nodeLabel: sc.NodeName}

	sc.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   metricsNamespace,
		Name:        eventsMetric,
		Help:        "Number of processed change notifications by outcome",
		ConstLabels: constLabels,
	}, []string{outcomeLabel})
	sc.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   metricsNamespace,
		Name:        errorsMetric,
		Help:        "Number of failed reconciliations by error type",
		ConstLabels: constLabels,
	}, []string{errorLabel})
	sc.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   metricsNamespace,
		Name:        durationMetric,
		Help:        "Duration of a single reconciliation pass",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	for _, collector := range []prometheus.Collector{sc.events, sc.errors, sc.duration} {
		if err := sc.Registerer.Register(collector); err != nil {
			sc.Log.Errorf("failed to register route agent metric, error %s", err)
			return err
		}
	}
	// report zero values for every outcome from the start
	for outcome := range outcomeNames {
		sc.events.WithLabelValues(outcome.String())
	}
	return nil
}

// ObserveReconcile updates the metrics with the outcome of a reconciliation pass.
func (sc *StatsCollector) ObserveReconcile(record *EventRecord) {
	if sc.events == nil {
		// not initialized
		return
	}
	sc.events.WithLabelValues(record.Outcome).Inc()
	if record.Error != nil {
		sc.errors.WithLabelValues(errorType(record.Error)).Inc()
	}
	sc.duration.Observe(record.Duration.Seconds())
}

// errorType returns metric label for the given reconciliation error.
func errorType(err error) string {
	switch err.(type) {
	case *ParseError:
		return "parse"
	case *ResolutionError:
		return "resolution"
	case *vppcalls.InvalidCIDRError:
		return "invalid-cidr"
	case *RouteProgramError:
		return "route-program"
	}
	return "other"
}
