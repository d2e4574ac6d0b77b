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

package fibtable

import (
	"fmt"
	"net"
	"sync"

	"github.com/contiv/vpp-route-agent/plugins/routeagent/vppcalls"
)

// Route is a route installed into MockFibTable.
type Route struct {
	SwIfIndex uint32
	VrfID     uint32
	Dst       string // <network>/<prefix-len>
	NextHop   string
}

// MockFibTable simulates the FIB-related VPP API.
type MockFibTable struct {
	sync.Mutex

	adminUp   map[uint32]bool
	addresses map[uint32][]string
	routes    []Route

	adminUpErr  error
	addressErr  error
	routeErr    error
	routeRetval int32
	routeCalls  int
}

// NewMockFibTable is a constructor for MockFibTable.
func NewMockFibTable() *MockFibTable {
	return &MockFibTable{
		adminUp:   make(map[uint32]bool),
		addresses: make(map[uint32][]string),
	}
}

// InjectAdminUpError makes InterfaceAdminUp fail.
func (m *MockFibTable) InjectAdminUpError(err error) {
	m.Lock()
	defer m.Unlock()
	m.adminUpErr = err
}

// InjectAddressError makes AddInterfaceIP fail.
func (m *MockFibTable) InjectAddressError(err error) {
	m.Lock()
	defer m.Unlock()
	m.addressErr = err
}

// InjectRouteResult makes AddOrReplaceRoute return the given result.
// Zero retval with nil error restores success.
func (m *MockFibTable) InjectRouteResult(retval int32, err error) {
	m.Lock()
	defer m.Unlock()
	m.routeRetval = retval
	m.routeErr = err
}

// InterfaceAdminUp marks the interface as up.
func (m *MockFibTable) InterfaceAdminUp(swIfIndex uint32) error {
	m.Lock()
	defer m.Unlock()
	if m.adminUpErr != nil {
		return m.adminUpErr
	}
	m.adminUp[swIfIndex] = true
	return nil
}

// AddInterfaceIP records the interface address.
func (m *MockFibTable) AddInterfaceIP(swIfIndex uint32, ip net.IP, prefixLen uint8) error {
	m.Lock()
	defer m.Unlock()
	if m.addressErr != nil {
		return m.addressErr
	}
	m.addresses[swIfIndex] = append(m.addresses[swIfIndex], fmt.Sprintf("%s/%d", ip, prefixLen))
	return nil
}

// AddOrReplaceRoute installs the route, replacing a route with the same
// destination in the same VRF.
func (m *MockFibTable) AddOrReplaceRoute(swIfIndex, vrfID uint32, route *vppcalls.RouteParams) vppcalls.Result {
	m.Lock()
	defer m.Unlock()
	m.routeCalls++
	if m.routeErr != nil || m.routeRetval != 0 {
		return vppcalls.Result{Retval: m.routeRetval, Err: m.routeErr}
	}
	entry := Route{
		SwIfIndex: swIfIndex,
		VrfID:     vrfID,
		Dst:       fmt.Sprintf("%s/%d", route.DstNetwork, route.PrefixLen),
		NextHop:   route.NextHop.String(),
	}
	for i := range m.routes {
		if m.routes[i].VrfID == vrfID && m.routes[i].Dst == entry.Dst {
			m.routes[i] = entry
			return vppcalls.Result{}
		}
	}
	m.routes = append(m.routes, entry)
	return vppcalls.Result{}
}

// IsAdminUp returns true if the interface was set up.
func (m *MockFibTable) IsAdminUp(swIfIndex uint32) bool {
	m.Lock()
	defer m.Unlock()
	return m.adminUp[swIfIndex]
}

// GetAddresses returns addresses assigned to the interface.
func (m *MockFibTable) GetAddresses(swIfIndex uint32) []string {
	m.Lock()
	defer m.Unlock()
	return append([]string(nil), m.addresses[swIfIndex]...)
}

// GetRoutes returns the installed routes.
func (m *MockFibTable) GetRoutes() []Route {
	m.Lock()
	defer m.Unlock()
	return append([]Route(nil), m.routes...)
}

// RouteCalls returns the number of AddOrReplaceRoute calls, including failed ones.
func (m *MockFibTable) RouteCalls() int {
	m.Lock()
	defer m.Unlock()
	return m.routeCalls
}
