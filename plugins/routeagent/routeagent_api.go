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
	"fmt"
)

// Action is a type of change applied to a watched key.
type Action string

const (
	// Create is the first write of a key.
	Create Action = "create"
	// Update is a re-write of an existing key.
	Update Action = "update"
	// Delete is a removal of a key.
	Delete Action = "delete"
	// Other is any other kind of change reported by the store.
	Other Action = "other"
)

// String returns the action name.
func (a Action) String() string {
	if a == "" {
		return string(Other)
	}
	return string(a)
}

// ChangeEvent is a single change notification delivered by the watcher.
type ChangeEvent struct {
	Key    string
	Action Action
	Value  string
}

// String returns human-readable description of the event.
func (ev ChangeEvent) String() string {
	return fmt.Sprintf("<Key: %s, Action: %s, Value: %q>", ev.Key, ev.Action, ev.Value)
}

// ChangeHandler receives change notifications one at a time.
// HandleChange must return before the next notification is delivered.
type ChangeHandler interface {
	HandleChange(event ChangeEvent)
}

// Outcome is the terminal state of a single reconciliation pass.
type Outcome int

const (
	// Programmed means the route was installed.
	Programmed Outcome = iota
	// Duplicate means the event repeated the previously processed one.
	Duplicate
	// IgnoredAction means the event was not a Create.
	IgnoredAction
	// LocalBlock means the block is owned by this host.
	LocalBlock
	// Failed means the pass stopped on an error.
	Failed
)

var outcomeNames = map[Outcome]string{
	Programmed:    "programmed",
	Duplicate:     "duplicate",
	IgnoredAction: "ignored-action",
	LocalBlock:    "local-block",
	Failed:        "failed",
}

// String returns name of the outcome.
func (o Outcome) String() string {
	if name, known := outcomeNames[o]; known {
		return name
	}
	return fmt.Sprintf("outcome-%d", int(o))
}

// ReconcileObserver is notified about the outcome of every reconciliation pass.
type ReconcileObserver interface {
	ObserveReconcile(record *EventRecord)
}

// API is the read-only interface of the route agent plugin.
type API interface {
	// GetConfig returns the effective configuration.
	GetConfig() *Config

	// GetEventHistory returns a copy of the recorded event history.
	GetEventHistory() []*EventRecord
}
