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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/logging/logrus"
	. "github.com/onsi/gomega"

	"github.com/contiv/vpp-route-agent/mock/kvstore"
	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/ipamblock"
)

const watchedPrefix = ipamblock.DefaultKeyPrefix

// eventCollector records delivered events.
type eventCollector struct {
	sync.Mutex
	events []ChangeEvent
}

func (c *eventCollector) HandleChange(event ChangeEvent) {
	c.Lock()
	defer c.Unlock()
	c.events = append(c.events, event)
}

func (c *eventCollector) getEvents() []ChangeEvent {
	c.Lock()
	defer c.Unlock()
	return append([]ChangeEvent(nil), c.events...)
}

// overlapDetector fails the delivery check if two events are handled at once.
type overlapDetector struct {
	inFlight int32
	overlaps int32
	handled  int32
}

func (d *overlapDetector) HandleChange(event ChangeEvent) {
	if atomic.AddInt32(&d.inFlight, 1) > 1 {
		atomic.AddInt32(&d.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&d.handled, 1)
	atomic.AddInt32(&d.inFlight, -1)
}

func newTestWatcher(t *testing.T) (*Watcher, *kvstore.MockKVStore, *eventCollector) {
	RegisterTestingT(t)
	store := kvstore.NewMockKVStore()
	collector := &eventCollector{}
	watcher := NewWatcher(logrus.NewLogger("watcher-test"), store, watchedPrefix, collector)
	return watcher, store, collector
}

func TestWatcherActionMapping(t *testing.T) {
	watcher, store, collector := newTestWatcher(t)
	Expect(watcher.Start()).To(Succeed())

	Expect(store.Put(blockKey1, []byte(remoteBlock1))).To(Succeed())
	Expect(store.Put(blockKey1, []byte(remoteBlock2))).To(Succeed())
	existed, err := store.Delete(blockKey1)
	Expect(err).ShouldNot(HaveOccurred())
	Expect(existed).To(BeTrue())

	// outside of the watched prefix
	Expect(store.Put("/vpp-calico/hosts/node-b/peerip/ipv4/1", []byte(remotePeerIP))).To(Succeed())

	Expect(collector.getEvents()).To(Equal([]ChangeEvent{
		{Key: blockKey1, Action: Create, Value: remoteBlock1},
		{Key: blockKey1, Action: Update, Value: remoteBlock2},
		{Key: blockKey1, Action: Delete, Value: ""},
	}))
}

func TestWatcherReplay(t *testing.T) {
	watcher, store, collector := newTestWatcher(t)
	Expect(store.Put(blockKey2, []byte(remoteBlock2))).To(Succeed())
	Expect(store.Put(blockKey1, []byte(remoteBlock1))).To(Succeed())
	Expect(store.Put(watchedPrefix+"/"+StopKeyword, []byte(StopValue))).To(Succeed())
	Expect(store.Put("/unrelated", []byte("x"))).To(Succeed())

	Expect(watcher.Start()).To(Succeed())
	count, err := watcher.Replay()
	Expect(err).ShouldNot(HaveOccurred())
	Expect(count).To(Equal(2))

	Expect(collector.getEvents()).To(Equal([]ChangeEvent{
		{Key: blockKey1, Action: Create, Value: remoteBlock1},
		{Key: blockKey2, Action: Create, Value: remoteBlock2},
	}))

	// the stop key present before startup does not stop the agent
	select {
	case <-watcher.StopRequested():
		Fail("stop should not be requested")
	default:
	}
}

func TestWatcherStopKey(t *testing.T) {
	watcher, store, collector := newTestWatcher(t)
	Expect(watcher.Start()).To(Succeed())

	stopKey := watchedPrefix + "/" + StopKeyword
	Expect(store.Put(stopKey, []byte("0"))).To(Succeed())
	Consistently(watcher.StopRequested()).ShouldNot(BeClosed())

	Expect(store.Put(stopKey, []byte(StopValue))).To(Succeed())
	Eventually(watcher.StopRequested()).Should(BeClosed())

	// repeated stop is harmless
	Expect(store.Put(stopKey, []byte("1\n"))).To(Succeed())

	// the stop key is never delivered to the handler
	Expect(collector.getEvents()).To(BeEmpty())
}

func TestWatcherClose(t *testing.T) {
	watcher, store, collector := newTestWatcher(t)
	Expect(watcher.Start()).To(Succeed())
	Expect(store.WatchCount()).To(Equal(1))

	Expect(watcher.Close()).To(Succeed())
	Expect(store.WatchCount()).To(BeZero())

	Expect(store.Put(blockKey1, []byte(remoteBlock1))).To(Succeed())
	Expect(collector.getEvents()).To(BeEmpty())

	Expect(watcher.Start()).To(Equal(ErrClosedWatcher))
	_, err := watcher.Replay()
	Expect(err).To(Equal(ErrClosedWatcher))
}

func TestWatcherErrors(t *testing.T) {
	watcher, store, _ := newTestWatcher(t)

	store.InjectWatchError(errors.New("watch failed"))
	Expect(watcher.Start()).ToNot(Succeed())

	store.InjectListError(errors.New("list failed"))
	_, err := watcher.Replay()
	Expect(err).To(HaveOccurred())
}

func TestWatcherSerializesReplayAndWatch(t *testing.T) {
	RegisterTestingT(t)
	const numBlocks = 20

	store := kvstore.NewMockKVStore()
	detector := &overlapDetector{}
	watcher := NewWatcher(logrus.NewLogger("watcher-serialize-test"), store, watchedPrefix, detector)

	blockKey := func(i int) string {
		return fmt.Sprintf("%s/10.%d.0.0-24", watchedPrefix, i)
	}
	for i := 0; i < numBlocks; i++ {
		Expect(store.Put(blockKey(i), []byte(remoteBlock1))).To(Succeed())
	}
	Expect(watcher.Start()).To(Succeed())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := numBlocks; i < 2*numBlocks; i++ {
			store.Put(blockKey(i), []byte(remoteBlock2))
		}
	}()
	count, err := watcher.Replay()
	wg.Wait()

	Expect(err).ShouldNot(HaveOccurred())
	Expect(count).To(BeNumerically(">=", numBlocks))
	Expect(atomic.LoadInt32(&detector.handled)).To(BeEquivalentTo(count + numBlocks))
	Expect(atomic.LoadInt32(&detector.overlaps)).To(BeZero())
}

// etcdWatchResp mimics responses of the etcd watcher, which reports
// the previous value of a key as nil also when it was empty.
type etcdWatchResp struct {
	changeType datasync.Op
	prevValue  []byte
}

func (r *etcdWatchResp) GetChangeType() datasync.Op { return r.changeType }
func (r *etcdWatchResp) GetKey() string             { return blockKey1 }
func (r *etcdWatchResp) GetValue() []byte           { return []byte(remoteBlock1) }
func (r *etcdWatchResp) GetPrevValue() []byte       { return r.prevValue }
func (r *etcdWatchResp) GetRevision() int64         { return 1 }

func TestWatchAction(t *testing.T) {
	RegisterTestingT(t)

	Expect(watchAction(&etcdWatchResp{changeType: datasync.Put})).To(Equal(Create))
	Expect(watchAction(&etcdWatchResp{changeType: datasync.Put, prevValue: []byte(remoteBlock2)})).To(Equal(Update))
	Expect(watchAction(&etcdWatchResp{changeType: datasync.Delete})).To(Equal(Delete))

	// a put over an empty previous value is a creation of a block
	Expect(watchAction(&etcdWatchResp{changeType: datasync.Put, prevValue: nil})).To(Equal(Create))
}
