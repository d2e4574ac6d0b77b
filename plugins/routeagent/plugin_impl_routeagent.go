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

	"git.fd.io/govpp.git/adapter/socketclient"
	govppapi "git.fd.io/govpp.git/api"
	govpp "git.fd.io/govpp.git/core"
	"github.com/ligato/cn-infra/datasync"
	"github.com/ligato/cn-infra/db/keyval/etcd"
	"github.com/ligato/cn-infra/infra"
	"github.com/ligato/cn-infra/utils/safeclose"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/peerip"
	"github.com/contiv/vpp-route-agent/plugins/routeagent/vppcalls"
)

// timeout for connection to VPP
const vppConnectTimeout = 20 * time.Second

// RouteAgent plugin programs routes towards IPAM blocks of remote hosts
// into the VPP FIB.
//
// Init connects to etcd and publishes the local uplink IP, then connects
// to VPP and (unless disabled) brings the uplink interface up and assigns
// the uplink IP to it. Every failure in Init is returned as *StartupError.
// AfterInit starts watching IPAM blocks and replays the blocks already
// present in etcd.
type RouteAgent struct {
	Deps

	etcdConn *etcd.BytesConnectionEtcd
	vppConn  *govpp.Connection
	vppChan  govppapi.Channel

	history    *EventHistory
	stats      *StatsCollector
	reconciler *Reconciler
	watcher    *Watcher
}

// Deps lists dependencies of RouteAgent.
type Deps struct {
	infra.PluginDeps

	// mandatory
	Config *Config

	// etcd connection is created from Config if not injected
	Store KeyValStore
	// VPP connection is created from Config if not injected
	FIB vppcalls.FibAPI

	// optional
	HTTPHandlers HTTPHandlers
	Registerer   prometheus.Registerer
}

// KeyValStore defines API that a DB client must provide for RouteAgent.
// Implemented by etcd.BytesConnectionEtcd.
type KeyValStore interface {
	KeyValReader
	KeyValWatcher

	// Put writes the value under the key.
	Put(key string, data []byte, opts ...datasync.PutOption) error
}

var errMissingConfig = errors.New("missing mandatory configuration")

// Init validates the configuration and bootstraps the local host.
func (p *RouteAgent) Init() error {
	if p.Config == nil {
		return NewStartupError(StageConfig, errMissingConfig)
	}
	if err := p.Config.Validate(); err != nil {
		return NewStartupError(StageConfig, err)
	}
	p.Log.SetLevel(p.Config.GetLogLevel())
	p.Log.Infof("Route agent configuration: %+v", p.Config.Redacted())

	if err := p.connectStore(); err != nil {
		return NewStartupError(StageStore, err)
	}
	if err := p.publishPeerIP(); err != nil {
		return NewStartupError(StageStore, err)
	}
	if err := p.connectVPP(); err != nil {
		return NewStartupError(StageVPP, err)
	}
	if p.Config.ConfigureUplink {
		if err := p.configureUplink(); err != nil {
			return err
		}
	} else {
		p.Log.Info("Uplink interface configuration is skipped")
	}

	p.history = NewEventHistory(p.Config.EventHistoryLimit)
	observers := []ReconcileObserver{p.history}
	if p.Registerer != nil {
		p.stats = &StatsCollector{
			Log:        p.Log,
			NodeName:   p.Config.NodeName,
			Registerer: p.Registerer,
		}
		if err := p.stats.Init(); err != nil {
			return err
		}
		observers = append(observers, p.stats)
	}

	p.reconciler = NewReconciler(p.Log, p.Config.NodeName,
		NewHostResolver(p.Store, p.Config.Namespace),
		NewRouteProgrammer(p.FIB, p.Config.UplinkIfIndex, p.Config.VrfID),
		observers...)
	p.watcher = NewWatcher(p.Log, p.Store, p.Config.WatchedKey, p.reconciler)
	return nil
}

// AfterInit registers REST handlers, starts watching and replays existing blocks.
func (p *RouteAgent) AfterInit() error {
	p.registerHandlers()

	if err := p.watcher.Start(); err != nil {
		return NewStartupError(StageStore, err)
	}
	if p.Config.ReplayOnStart {
		count, err := p.watcher.Replay()
		if err != nil {
			return NewStartupError(StageStore, err)
		}
		p.Log.Infof("Replayed %d existing records under %s", count, p.Config.WatchedKey)
	}
	return nil
}

// Close stops watching and closes connections created by the plugin.
func (p *RouteAgent) Close() error {
	if p.watcher != nil {
		p.watcher.Close()
	}
	var toClose []interface{}
	if p.vppChan != nil {
		toClose = append(toClose, p.vppChan)
	}
	if p.etcdConn != nil {
		toClose = append(toClose, p.etcdConn)
	}
	_, err := safeclose.CloseAll(toClose...)
	if p.vppConn != nil {
		p.vppConn.Disconnect()
	}
	return err
}

// StopRequested is closed when the stop key is set in etcd.
// Returns nil channel before the plugin is initialized.
func (p *RouteAgent) StopRequested() <-chan struct{} {
	if p.watcher == nil {
		return nil
	}
	return p.watcher.StopRequested()
}

// GetConfig returns the effective configuration.
func (p *RouteAgent) GetConfig() *Config {
	return p.Config
}

// GetEventHistory returns a copy of the recorded event history.
func (p *RouteAgent) GetEventHistory() []*EventRecord {
	if p.history == nil {
		return nil
	}
	return p.history.Records()
}

// connectStore connects to etcd unless a store was injected.
func (p *RouteAgent) connectStore() (err error) {
	if p.Store != nil {
		return nil
	}
	clientCfg, err := p.Config.EtcdClientConfig()
	if err != nil {
		return err
	}
	p.etcdConn, err = etcd.NewEtcdConnectionWithBytes(*clientCfg, p.Log)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to etcd %v", p.Config.Etcd.Endpoints)
	}
	p.Store = p.etcdConn
	return nil
}

// publishPeerIP advertises the uplink IP to the other hosts.
func (p *RouteAgent) publishPeerIP() error {
	key := peerip.Key(p.Config.Namespace, p.Config.NodeName)
	if err := p.Store.Put(key, []byte(p.Config.UplinkIP)); err != nil {
		return errors.Wrapf(err, "failed to publish peer IP under %s", key)
	}
	p.Log.Infof("Published peer IP %s under %s", p.Config.UplinkIP, key)
	return nil
}

// connectVPP connects to VPP unless a FIB handler was injected.
func (p *RouteAgent) connectVPP() (err error) {
	if p.FIB != nil {
		return nil
	}
	socket := p.Config.VppSocket
	if socket == "" {
		socket = socketclient.DefaultSocketName
	}

	conn, connChan, err := govpp.AsyncConnect(socketclient.NewVppClient(socket))
	if err != nil {
		return errors.Wrapf(err, "failed to connect to VPP via %s", socket)
	}
	p.vppConn = conn

	// wait until connected or until timeout expires
	select {
	case ev := <-connChan:
		if ev.State != govpp.Connected {
			return errors.New("VPP connection error: disconnected")
		}
		p.Log.Debug("Connected to VPP.")
	case <-time.After(vppConnectTimeout):
		return errors.Errorf("not able to connect to VPP within %v", vppConnectTimeout)
	}

	p.vppChan, err = p.vppConn.NewAPIChannel()
	if err != nil {
		return errors.Wrap(err, "failed to create GoVPP API channel")
	}
	p.FIB = vppcalls.NewFibVppHandler(p.vppChan, p.Log)
	return nil
}

// configureUplink sets the uplink interface up and assigns the uplink IP.
func (p *RouteAgent) configureUplink() error {
	ifIndex := p.Config.UplinkIfIndex
	if err := p.FIB.InterfaceAdminUp(ifIndex); err != nil {
		return NewStartupError(StageInterfaceUp, err)
	}
	p.Log.Infof("Uplink interface %d is up", ifIndex)

	uplink, err := p.Config.UplinkNetwork()
	if err != nil {
		return NewStartupError(StageConfig, err)
	}
	if err := p.FIB.AddInterfaceIP(ifIndex, uplink.IP, p.Config.UplinkPrefixLen); err != nil {
		return NewStartupError(StageAddress, err)
	}
	p.Log.Infof("Assigned %s to uplink interface %d", uplink, ifIndex)
	return nil
}
