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
	"time"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/ipamblock"
	"github.com/contiv/vpp-route-agent/plugins/routeagent/vppcalls"
)

// Reconciler drives every change notification through the route pipeline:
//   dedup -> action filter -> parse -> locality -> resolve -> translate -> program
//
// The Reconciler is not synchronized, HandleChange must not be called
// concurrently (see Watcher).
type Reconciler struct {
	log        logging.Logger
	localHost  string
	resolver   *HostResolver
	programmer *RouteProgrammer
	observers  []ReconcileObserver

	// last accepted event, nil until the first event arrives
	lastEvent *ChangeEvent
	evSeqNum  uint64
}

// NewReconciler creates a reconciler for the given local host.
// Observers are notified about the outcome of each reconciliation pass.
func NewReconciler(log logging.Logger, localHost string, resolver *HostResolver,
	programmer *RouteProgrammer, observers ...ReconcileObserver) *Reconciler {
	return &Reconciler{
		log:        log,
		localHost:  localHost,
		resolver:   resolver,
		programmer: programmer,
		observers:  observers,
	}
}

// HandleChange reconciles a single change notification. Errors are logged
// and recorded, never returned.
func (r *Reconciler) HandleChange(event ChangeEvent) {
	record := &EventRecord{
		SeqNum: r.evSeqNum,
		Key:    event.Key,
		Action: event.Action.String(),
		Value:  event.Value,
		Start:  time.Now(),
	}
	r.evSeqNum++

	outcome, err := r.reconcile(event)

	record.Duration = time.Since(record.Start)
	record.Outcome = outcome.String()
	if err != nil {
		record.Error = err
		record.ErrorStr = err.Error()
	}
	r.logOutcome(event, outcome, err)
	for _, observer := range r.observers {
		observer.ObserveReconcile(record)
	}
}

// reconcile runs the pipeline and returns the terminal outcome of the pass.
// Failed outcome is always accompanied by an error.
func (r *Reconciler) reconcile(event ChangeEvent) (Outcome, error) {
	if !r.shouldProcess(event) {
		return Duplicate, nil
	}
	if !isCreate(event) {
		return IgnoredAction, nil
	}

	block, err := ipamblock.ParseBlock([]byte(event.Value))
	if err != nil {
		return Failed, NewParseError(event.Key, event.Value, err)
	}
	if !block.IsRemote(r.localHost) {
		return LocalBlock, nil
	}
	host, err := ipamblock.ParseAffinity(block.Affinity)
	if err != nil {
		return Failed, NewParseError(event.Key, event.Value, err)
	}

	nextHop, err := r.resolver.Resolve(host)
	if err != nil {
		return Failed, err
	}

	route, err := vppcalls.TranslateRoute(block.CIDR, nextHop)
	if err != nil {
		return Failed, err
	}
	if route.NonCanonical {
		r.log.Warnf("Block %s of host %s has host bits set, programming it unmasked",
			block.CIDR, host)
	}

	if err := r.programmer.Apply(route); err != nil {
		return Failed, err
	}
	return Programmed, nil
}

// isCreate is the action filter: only the first write of a block changes
// the topology, re-writes are IPAM bookkeeping.
func isCreate(event ChangeEvent) bool {
	return event.Action == Create
}

func (r *Reconciler) logOutcome(event ChangeEvent, outcome Outcome, err error) {
	switch outcome {
	case Programmed:
		r.log.Infof("Programmed route for block %s", event.Key)
	case Failed:
		r.log.Errorf("Failed to reconcile change of key %s (action %s, value %q): %v",
			event.Key, event.Action, event.Value, err)
	default:
		r.log.Debugf("Skipping change %v: %s", event, outcome)
	}
}
