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

package kvstore

import (
	"sort"
	"strings"
	"sync"

	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval"
)

// MockKVStore is an in-memory key-value store with etcd-like prefix watching.
// Watch callbacks are invoked synchronously from Put and Delete.
type MockKVStore struct {
	sync.Mutex

	data     map[string][]byte
	revision int64
	watches  []*watch

	getErr   error
	putErr   error
	watchErr error
	listErr  error
	gets     int
}

type watch struct {
	prefixes []string
	callback func(keyval.BytesWatchResp)
	closeCh  chan string
}

// NewMockKVStore is a constructor for MockKVStore.
func NewMockKVStore() *MockKVStore {
	return &MockKVStore{data: make(map[string][]byte)}
}

// InjectGetError makes all subsequent GetValue calls fail.
func (s *MockKVStore) InjectGetError(err error) {
	s.Lock()
	defer s.Unlock()
	s.getErr = err
}

// InjectPutError makes all subsequent Put calls fail.
func (s *MockKVStore) InjectPutError(err error) {
	s.Lock()
	defer s.Unlock()
	s.putErr = err
}

// InjectWatchError makes all subsequent Watch calls fail.
func (s *MockKVStore) InjectWatchError(err error) {
	s.Lock()
	defer s.Unlock()
	s.watchErr = err
}

// InjectListError makes all subsequent ListValues calls fail.
func (s *MockKVStore) InjectListError(err error) {
	s.Lock()
	defer s.Unlock()
	s.listErr = err
}

// GetCount returns the number of GetValue calls.
func (s *MockKVStore) GetCount() int {
	s.Lock()
	defer s.Unlock()
	return s.gets
}

// WatchCount returns the number of active watches.
func (s *MockKVStore) WatchCount() int {
	s.Lock()
	defer s.Unlock()
	return len(s.activeWatches())
}

// GetValue returns the value stored under the key.
func (s *MockKVStore) GetValue(key string) (data []byte, found bool, revision int64, err error) {
	s.Lock()
	defer s.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, false, 0, s.getErr
	}
	data, found = s.data[key]
	return data, found, s.revision, nil
}

// Put stores the value and notifies the watchers.
func (s *MockKVStore) Put(key string, data []byte, opts ...datasync.PutOption) error {
	s.Lock()
	if s.putErr != nil {
		s.Unlock()
		return s.putErr
	}
	prev := s.data[key]
	s.data[key] = data
	s.revision++
	resp := &watchResp{
		changeType: datasync.Put,
		key:        key,
		value:      data,
		prevValue:  prev,
		revision:   s.revision,
	}
	watches := s.activeWatches()
	s.Unlock()

	notify(watches, resp)
	return nil
}

// Delete removes the value and notifies the watchers.
func (s *MockKVStore) Delete(key string, opts ...datasync.DelOption) (existed bool, err error) {
	s.Lock()
	prev, existed := s.data[key]
	if !existed {
		s.Unlock()
		return false, nil
	}
	delete(s.data, key)
	s.revision++
	resp := &watchResp{
		changeType: datasync.Delete,
		key:        key,
		prevValue:  prev,
		revision:   s.revision,
	}
	watches := s.activeWatches()
	s.Unlock()

	notify(watches, resp)
	return true, nil
}

// Watch registers callback for changes under the given key prefixes.
// The watch is cancelled by closing closeCh.
func (s *MockKVStore) Watch(callback func(keyval.BytesWatchResp), closeCh chan string, keys ...string) error {
	s.Lock()
	defer s.Unlock()
	if s.watchErr != nil {
		return s.watchErr
	}
	s.watches = append(s.watches, &watch{prefixes: keys, callback: callback, closeCh: closeCh})
	return nil
}

// ListValues returns all values stored under the key prefix, ordered by key.
func (s *MockKVStore) ListValues(prefix string) (keyval.BytesKeyValIterator, error) {
	s.Lock()
	defer s.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var keys []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	it := &kvIterator{}
	for _, key := range keys {
		it.kvs = append(it.kvs, &watchResp{key: key, value: s.data[key], revision: s.revision})
	}
	return it, nil
}

// activeWatches filters out closed watches.
// The method assumes that the store is in the locked state.
func (s *MockKVStore) activeWatches() []*watch {
	var active []*watch
	for _, w := range s.watches {
		select {
		case <-w.closeCh:
			continue
		default:
			active = append(active, w)
		}
	}
	s.watches = active
	return active
}

func notify(watches []*watch, resp *watchResp) {
	for _, w := range watches {
		for _, prefix := range w.prefixes {
			if strings.HasPrefix(resp.key, prefix) {
				w.callback(resp)
				break
			}
		}
	}
}

// watchResp implements keyval.BytesWatchResp and keyval.BytesKeyVal.
type watchResp struct {
	changeType datasync.Op
	key        string
	value      []byte
	prevValue  []byte
	revision   int64
}

// GetChangeType returns the type of the change.
func (r *watchResp) GetChangeType() datasync.Op {
	return r.changeType
}

// GetKey returns the changed key.
func (r *watchResp) GetKey() string {
	return r.key
}

// GetValue returns the new value, nil for Delete.
func (r *watchResp) GetValue() []byte {
	return r.value
}

// GetPrevValue returns the value before the change, nil for a new key.
func (r *watchResp) GetPrevValue() []byte {
	return r.prevValue
}

// GetRevision returns the store revision of the change.
func (r *watchResp) GetRevision() int64 {
	return r.revision
}

type kvIterator struct {
	kvs []*watchResp
	idx int
}

// GetNext returns the next key-value pair.
func (it *kvIterator) GetNext() (kv keyval.BytesKeyVal, allReceived bool) {
	if it.idx >= len(it.kvs) {
		return nil, true
	}
	kv = it.kvs[it.idx]
	it.idx++
	return kv, false
}
