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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/ligato/cn-infra/rpc/rest"
	. "github.com/onsi/gomega"
	"github.com/unrolled/render"
)

// testHTTPHandlers registers handlers into a mux router, like the REST plugin.
type testHTTPHandlers struct {
	router    *mux.Router
	formatter *render.Render
}

func newTestHTTPHandlers() *testHTTPHandlers {
	return &testHTTPHandlers{
		router:    mux.NewRouter(),
		formatter: render.New(render.Options{IndentJSON: true}),
	}
}

func (h *testHTTPHandlers) RegisterHTTPHandler(path string, provider rest.HandlerProvider, methods ...string) *mux.Route {
	return h.router.HandleFunc(path, provider(h.formatter)).Methods(methods...)
}

func (h *testHTTPHandlers) get(url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func newRESTTestPlugin(t *testing.T, records int) (*RouteAgent, *testHTTPHandlers) {
	RegisterTestingT(t)

	handlers := newTestHTTPHandlers()
	config := validConfig()
	config.EtcdPassword = "secret"
	p := NewPlugin(UseConf(config), UseDeps(func(deps *Deps) {
		deps.HTTPHandlers = handlers
	}))
	p.history = NewEventHistory(0)
	for i := 0; i < records; i++ {
		p.history.ObserveReconcile(&EventRecord{SeqNum: uint64(i), Key: blockKey1, Outcome: "duplicate"})
	}
	p.registerHandlers()
	return p, handlers
}

func decodeHistory(rec *httptest.ResponseRecorder) []*EventRecord {
	var history []*EventRecord
	Expect(json.Unmarshal(rec.Body.Bytes(), &history)).To(Succeed())
	return history
}

func TestEventHistoryREST(t *testing.T) {
	_, handlers := newRESTTestPlugin(t, 5)

	rec := handlers.get(eventHistoryURL)
	Expect(rec.Code).To(Equal(http.StatusOK))
	Expect(decodeHistory(rec)).To(HaveLen(5))

	rec = handlers.get(eventHistoryURL + "?first=2")
	Expect(rec.Code).To(Equal(http.StatusOK))
	history := decodeHistory(rec)
	Expect(history).To(HaveLen(2))
	Expect(history[0].SeqNum).To(BeEquivalentTo(0))
	Expect(history[1].SeqNum).To(BeEquivalentTo(1))

	rec = handlers.get(eventHistoryURL + "?last=2")
	history = decodeHistory(rec)
	Expect(history).To(HaveLen(2))
	Expect(history[0].SeqNum).To(BeEquivalentTo(3))
	Expect(history[1].SeqNum).To(BeEquivalentTo(4))

	rec = handlers.get(eventHistoryURL + "?last=100")
	Expect(decodeHistory(rec)).To(HaveLen(5))

	rec = handlers.get(eventHistoryURL + "?seq-num=3")
	Expect(rec.Code).To(Equal(http.StatusOK))
	var record EventRecord
	Expect(json.Unmarshal(rec.Body.Bytes(), &record)).To(Succeed())
	Expect(record.SeqNum).To(BeEquivalentTo(3))
	Expect(record.Key).To(Equal(blockKey1))

	rec = handlers.get(eventHistoryURL + "?seq-num=42")
	Expect(rec.Code).To(Equal(http.StatusNotFound))

	rec = handlers.get(eventHistoryURL + "?first=abc")
	Expect(rec.Code).To(Equal(http.StatusBadRequest))
}

func TestConfigREST(t *testing.T) {
	_, handlers := newRESTTestPlugin(t, 0)

	rec := handlers.get(configURL)
	Expect(rec.Code).To(Equal(http.StatusOK))
	var config Config
	Expect(json.Unmarshal(rec.Body.Bytes(), &config)).To(Succeed())
	Expect(config.NodeName).To(Equal(localHost))
	Expect(config.UplinkIP).To(Equal("192.168.16.1"))
	Expect(config.EtcdPassword).To(Equal("***"))
}

func TestEventHistoryLimit(t *testing.T) {
	RegisterTestingT(t)

	history := NewEventHistory(3)
	for i := 0; i < 10; i++ {
		history.ObserveReconcile(&EventRecord{SeqNum: uint64(i)})
	}
	records := history.Records()
	Expect(records).To(HaveLen(3))
	Expect(records[0].SeqNum).To(BeEquivalentTo(7))
	Expect(records[2].SeqNum).To(BeEquivalentTo(9))
}
