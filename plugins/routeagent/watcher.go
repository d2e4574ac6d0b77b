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
	"strings"
	"sync"

	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
	"github.com/ligato/cn-infra/logging"
	"github.com/pkg/errors"
)

const (
	// StopKeyword is the name of the key under the watched prefix which,
	// when set to StopValue, makes the agent stop watching and exit.
	StopKeyword = "vppagentstop"
	// StopValue is the value of the stop key which triggers the stop.
	StopValue = "1"
)

// KeyValWatcher watches and lists values under a key prefix.
// Implemented by etcd.BytesConnectionEtcd.
type KeyValWatcher interface {
	Watch(respChan func(keyval.BytesWatchResp), closeChan chan string, keys ...string) error
	ListValues(key string) (keyval.BytesKeyValIterator, error)
}

// ErrClosedWatcher is returned when Watcher is used when it is already closed.
var ErrClosedWatcher = errors.New("watcher was closed")

// Watcher translates changes under the watched prefix into change events
// and delivers them to the handler one at a time.
type Watcher struct {
	sync.Mutex

	log     logging.Logger
	db      KeyValWatcher
	prefix  string
	stopKey string
	handler ChangeHandler

	watchCloseCh chan string
	closed       bool
	stopOnce     sync.Once
	stopCh       chan struct{}
}

// NewWatcher is the constructor for Watcher.
func NewWatcher(log logging.Logger, db KeyValWatcher, prefix string, handler ChangeHandler) *Watcher {
	return &Watcher{
		log:     log,
		db:      db,
		prefix:  prefix,
		stopKey: strings.TrimSuffix(prefix, "/") + "/" + StopKeyword,
		handler: handler,
		stopCh:  make(chan struct{}),
	}
}

// StopRequested is closed once the stop key is set.
func (w *Watcher) StopRequested() <-chan struct{} {
	return w.stopCh
}

// Start starts watching the prefix.
func (w *Watcher) Start() error {
	w.Lock()
	defer w.Unlock()
	if w.closed {
		return ErrClosedWatcher
	}
	w.stopWatching()
	w.watchCloseCh = make(chan string)
	if err := w.db.Watch(w.onChange, w.watchCloseCh, w.prefix); err != nil {
		return errors.Wrapf(err, "failed to watch prefix %s", w.prefix)
	}
	w.log.Infof("Watching changes under %s", w.prefix)
	return nil
}

// Replay delivers every value currently stored under the prefix as a Create event.
// The stop key is skipped.
func (w *Watcher) Replay() (count int, err error) {
	iterator, err := w.db.ListValues(w.prefix)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list values under %s", w.prefix)
	}
	for {
		kv, allReceived := iterator.GetNext()
		if allReceived {
			break
		}
		if kv.GetKey() == w.stopKey {
			w.log.Warnf("Ignoring stop key %s present before startup", w.stopKey)
			continue
		}
		if !w.deliver(ChangeEvent{Key: kv.GetKey(), Action: Create, Value: string(kv.GetValue())}) {
			return count, ErrClosedWatcher
		}
		count++
	}
	return count, nil
}

// Close stops watching. Events received afterwards are dropped.
func (w *Watcher) Close() error {
	w.Lock()
	defer w.Unlock()
	w.closed = true
	w.stopWatching()
	return nil
}

// stopWatching closes the active watch.
// The method assumes that Watcher is in the locked state.
func (w *Watcher) stopWatching() {
	if w.watchCloseCh != nil {
		close(w.watchCloseCh)
		w.watchCloseCh = nil
	}
}

// onChange is callback triggered when change under the prefix is received.
func (w *Watcher) onChange(resp keyval.BytesWatchResp) {
	if resp.GetKey() == w.stopKey {
		w.onStopKey(resp)
		return
	}
	w.deliver(ChangeEvent{
		Key:    resp.GetKey(),
		Action: watchAction(resp),
		Value:  string(resp.GetValue()),
	})
}

// onStopKey closes the stop channel if the stop key was set to StopValue.
func (w *Watcher) onStopKey(resp keyval.BytesWatchResp) {
	if resp.GetChangeType() != datasync.Put || strings.TrimSpace(string(resp.GetValue())) != StopValue {
		w.log.Debugf("Ignoring change of the stop key %s", w.stopKey)
		return
	}
	w.stopOnce.Do(func() {
		w.log.Info("Stop requested via the stop key")
		close(w.stopCh)
	})
}

// deliver passes the event to the handler unless the watcher is closed.
func (w *Watcher) deliver(event ChangeEvent) bool {
	w.Lock()
	defer w.Unlock()
	if w.closed {
		return false
	}
	w.handler.HandleChange(event)
	return true
}

// watchAction maps etcd change onto action: put of a new key is a Create,
// put of an existing key an Update.
func watchAction(resp keyval.BytesWatchResp) Action {
	switch resp.GetChangeType() {
	case datasync.Delete:
		return Delete
	case datasync.Put:
		if resp.GetPrevValue() == nil {
			return Create
		}
		return Update
	}
	return Other
}
