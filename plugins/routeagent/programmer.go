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

	"github.com/contiv/vpp-route-agent/plugins/routeagent/vppcalls"
)

// RouteProgrammer installs routes through the uplink interface into one VRF.
type RouteProgrammer struct {
	fib       vppcalls.FibAPI
	swIfIndex uint32
	vrfID     uint32
}

// NewRouteProgrammer creates a programmer sending routes via the given interface.
func NewRouteProgrammer(fib vppcalls.FibAPI, swIfIndex, vrfID uint32) *RouteProgrammer {
	return &RouteProgrammer{fib: fib, swIfIndex: swIfIndex, vrfID: vrfID}
}

// Apply adds or replaces the route. There is no retry.
func (p *RouteProgrammer) Apply(route *vppcalls.RouteParams) error {
	res := p.fib.AddOrReplaceRoute(p.swIfIndex, p.vrfID, route)
	if res.Ok() {
		return nil
	}
	var dst, nextHop string
	if route != nil {
		dst = fmt.Sprintf("%s/%d", route.DstNetwork, route.PrefixLen)
		nextHop = route.NextHop.String()
	}
	return NewRouteProgramError(dst, nextHop, res.Retval, res.Err)
}
