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

package vppcalls

import (
	"fmt"
	"net"

	govppapi "git.fd.io/govpp.git/api"
	"github.com/ligato/cn-infra/logging"
)

const (
	// DefaultVrfID is the VRF all routes of the agent are installed into.
	DefaultVrfID uint32 = 0

	// nextHopViaLabelUnset marks a non-MPLS next hop.
	nextHopViaLabelUnset uint32 = 0xfffff + 1

	// classifyTableIndexUnset disables classification of a route.
	classifyTableIndexUnset = ^uint32(0)
)

// FibAPI is the subset of the VPP binary API consumed by the route agent:
// uplink bring-up, uplink addressing and unicast route programming.
type FibAPI interface {
	// InterfaceAdminUp sets the interface administratively up.
	InterfaceAdminUp(swIfIndex uint32) error
	// AddInterfaceIP assigns an IPv4 address with the given prefix length
	// to the interface.
	AddInterfaceIP(swIfIndex uint32, ip net.IP, prefixLen uint8) error
	// AddOrReplaceRoute installs a single-path unicast route via the given
	// interface into the VRF. Re-adding an existing route replaces it.
	AddOrReplaceRoute(swIfIndex, vrfID uint32, route *RouteParams) Result
}

// RouteParams are route attributes in the binary form expected by VPP.
type RouteParams struct {
	DstNetwork net.IP // 4 bytes
	PrefixLen  uint8
	NextHop    net.IP // 4 bytes

	// NonCanonical is set when DstNetwork has host bits set beyond
	// PrefixLen. The network is never masked.
	NonCanonical bool
}

// String returns a human-readable representation of the route.
func (r *RouteParams) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%d via %s", r.DstNetwork, r.PrefixLen, r.NextHop)
}

// Result is the outcome of a route mutation as reported by VPP.
type Result struct {
	// Retval is the return value of the VPP reply, 0 means success.
	Retval int32
	// Err is set if the request failed either in transport or in VPP.
	Err error
}

// Ok returns true if the mutation was applied.
func (r Result) Ok() bool {
	return r.Err == nil && r.Retval == 0
}

// Rejected returns true if VPP received and refused the request, as opposed
// to a failure to deliver the request or to receive the reply.
func (r Result) Rejected() bool {
	return r.Retval != 0
}

// FibVppHandler implements FibAPI over a GoVPP channel.
type FibVppHandler struct {
	callsChannel govppapi.Channel
	log          logging.Logger
}

// NewFibVppHandler creates a new instance of the FIB vppcalls handler.
func NewFibVppHandler(ch govppapi.Channel, log logging.Logger) *FibVppHandler {
	return &FibVppHandler{
		callsChannel: ch,
		log:          log,
	}
}
