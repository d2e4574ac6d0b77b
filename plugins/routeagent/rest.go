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
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ligato/cn-infra/rpc/rest"
	"github.com/unrolled/render"
)

const (
	// prefix used for REST urls of the route agent.
	urlPrefix = "/routeagent/"

	// eventHistoryURL is URL used to obtain the event history.
	eventHistoryURL = urlPrefix + "event-history"

	// configURL is URL used to obtain the effective configuration.
	configURL = urlPrefix + "config"

	// event-history arguments (by precedence):
	//   * seq-num
	//   * first (max. number of oldest records to return)
	//   * last (max. number of latest records to return)
	seqNumArg = "seq-num"
	firstArg  = "first"
	lastArg   = "last"
)

// HTTPHandlers is the subset of the cn-infra REST plugin API used to register
// the route agent handlers.
type HTTPHandlers interface {
	RegisterHTTPHandler(path string, provider rest.HandlerProvider, methods ...string) *mux.Route
}

// errorString wraps string representation of an error that, unlike the original
// error, can be marshalled.
type errorString struct {
	Error string
}

// registerHandlers registers all supported REST APIs.
func (p *RouteAgent) registerHandlers() {
	if p.HTTPHandlers == nil {
		p.Log.Warn("No http handler provided, skipping registration of route agent REST handlers")
		return
	}
	p.HTTPHandlers.RegisterHTTPHandler(eventHistoryURL, p.eventHistoryGetHandler, "GET")
	p.HTTPHandlers.RegisterHTTPHandler(configURL, p.configGetHandler, "GET")
}

// eventHistoryGetHandler is the GET handler for "event-history" API.
func (p *RouteAgent) eventHistoryGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		history := p.history.Records()
		intParams := make(map[string]int)
		args := req.URL.Query()

		// parse optional integer parameters
		for _, intParam := range []string{seqNumArg, firstArg, lastArg} {
			if param, withParam := args[intParam]; withParam && len(param) == 1 {
				value, err := strconv.Atoi(param[0])
				if err != nil || value < 0 {
					formatter.JSON(w, http.StatusBadRequest,
						errorString{"invalid value of argument " + intParam})
					return
				}
				intParams[intParam] = value
			}
		}

		// handle seq-num argument
		if seqNum, hasSeqNum := intParams[seqNumArg]; hasSeqNum {
			for _, record := range history {
				if record.SeqNum == uint64(seqNum) {
					formatter.JSON(w, http.StatusOK, record)
					return
				}
			}
			err := errors.New("event with such sequence number is not recorded")
			formatter.JSON(w, http.StatusNotFound, errorString{err.Error()})
			return
		}

		// handle *first* argument
		if first, hasFirst := intParams[firstArg]; hasFirst {
			if len(history) < first {
				first = len(history)
			}
			formatter.JSON(w, http.StatusOK, history[:first])
			return
		}

		// handle *last* argument
		if last, hasLast := intParams[lastArg]; hasLast {
			if len(history) < last {
				last = len(history)
			}
			formatter.JSON(w, http.StatusOK, history[len(history)-last:])
			return
		}

		// full history
		formatter.JSON(w, http.StatusOK, history)
	}
}

// configGetHandler is the GET handler for "config" API.
// The etcd password is never exposed.
func (p *RouteAgent) configGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		formatter.JSON(w, http.StatusOK, p.Config.Redacted())
	}
}
