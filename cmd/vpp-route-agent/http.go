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

package main

import (
	"net/http"

	"github.com/ligato/cn-infra/rpc/rest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/render"

	"github.com/contiv/vpp-route-agent/plugins/routeagent"
)

// path where the metrics are exposed
const metricsURL = "/metrics"

var _ routeagent.HTTPHandlers = (*rest.Plugin)(nil)

// newHTTPPlugin creates the REST plugin serving the route agent API and metrics.
func newHTTPPlugin(addr string) *rest.Plugin {
	return rest.NewPlugin(rest.UseConf(rest.Config{Endpoint: addr}))
}

// registerMetricsHandler exposes metrics gathered by the registry.
func registerMetricsHandler(handlers routeagent.HTTPHandlers, gatherer prometheus.Gatherer) {
	handlers.RegisterHTTPHandler(metricsURL, metricsHandler(gatherer), "GET")
}

func metricsHandler(gatherer prometheus.Gatherer) rest.HandlerProvider {
	handler := promhttp.HandlerFor(gatherer,
		promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError, ErrorLog: logger})
	return func(formatter *render.Render) http.HandlerFunc {
		return handler.ServeHTTP
	}
}
