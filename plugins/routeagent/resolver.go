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

	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/ipamblock"
	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/peerip"
)

// KeyValReader reads a single value from the key-value store.
// Implemented by etcd.BytesConnectionEtcd.
type KeyValReader interface {
	GetValue(key string) (data []byte, found bool, revision int64, err error)
}

// HostResolver maps host names to their published uplink IP addresses.
type HostResolver struct {
	store     KeyValReader
	namespace string
}

// NewHostResolver creates a resolver reading peer IPs from the given namespace.
func NewHostResolver(store KeyValReader, namespace string) *HostResolver {
	return &HostResolver{store: store, namespace: namespace}
}

// Resolve returns the uplink IP published by the given host. The value is
// returned as stored and validated only during route translation.
func (r *HostResolver) Resolve(host ipamblock.HostRef) (string, error) {
	key := peerip.Key(r.namespace, string(host))
	data, found, _, err := r.store.GetValue(key)
	if err != nil {
		return "", NewResolutionError(string(host), key, err)
	}
	value := strings.TrimSpace(string(data))
	if !found || value == "" {
		return "", NewResolutionError(string(host), key, nil)
	}
	return value, nil
}
