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
	"sync"
	"time"
)

// DefaultEventHistoryLimit is the default number of records kept in the history.
const DefaultEventHistoryLimit = 1000

// EventRecord is a record of a processed change notification, added into
// the history of events, available via REST interface.
type EventRecord struct {
	SeqNum   uint64
	Key      string
	Action   string
	Value    string
	Outcome  string
	Error    error  `json:"-"`
	ErrorStr string `json:",omitempty"`
	Start    time.Time
	Duration time.Duration
}

// EventHistory keeps a bounded list of the most recent event records.
type EventHistory struct {
	sync.Mutex
	limit   int
	records []*EventRecord
}

// NewEventHistory creates history keeping at most <limit> records.
// Non-positive limit selects DefaultEventHistoryLimit.
func NewEventHistory(limit int) *EventHistory {
	if limit <= 0 {
		limit = DefaultEventHistoryLimit
	}
	return &EventHistory{limit: limit}
}

// ObserveReconcile appends the record, dropping the oldest ones over the limit.
func (h *EventHistory) ObserveReconcile(record *EventRecord) {
	h.Lock()
	defer h.Unlock()

	h.records = append(h.records, record)
	if overflow := len(h.records) - h.limit; overflow > 0 {
		h.records = append([]*EventRecord(nil), h.records[overflow:]...)
	}
}

// Records returns a copy of the recorded history, oldest first.
func (h *EventHistory) Records() []*EventRecord {
	h.Lock()
	defer h.Unlock()
	return append([]*EventRecord(nil), h.records...)
}
