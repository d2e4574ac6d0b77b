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
	"github.com/pkg/errors"

	"github.com/ligato/vpp-agent/plugins/vpp/binapi/vpp1904/ip"
)

// AddOrReplaceRoute implements FibAPI.
func (h *FibVppHandler) AddOrReplaceRoute(swIfIndex, vrfID uint32, route *RouteParams) Result {
	if route == nil {
		return Result{Err: errors.New("no route to add")}
	}
	req := &ip.IPAddDelRoute{
		NextHopSwIfIndex:   swIfIndex,
		TableID:            vrfID,
		NextHopTableID:     vrfID,
		ClassifyTableIndex: classifyTableIndexUnset,
		NextHopViaLabel:    nextHopViaLabelUnset,
		IsAdd:              1,
		IsIPv6:             0,
		NextHopWeight:      1,
		DstAddressLength:   route.PrefixLen,
		DstAddress:         []byte(route.DstNetwork.To4()),
		NextHopAddress:     []byte(route.NextHop.To4()),
	}
	reply := &ip.IPAddDelRouteReply{}

	if err := h.callsChannel.SendRequest(req).ReceiveReply(reply); err != nil {
		return Result{
			Retval: reply.Retval,
			Err:    errors.Wrapf(err, "%s failed", req.GetMessageName()),
		}
	}
	if reply.Retval != 0 {
		return Result{
			Retval: reply.Retval,
			Err:    errors.Errorf("%s returned %d", reply.GetMessageName(), reply.Retval),
		}
	}

	h.log.Debugf("Route %v installed into VRF %d via sw_if_index %d", route, vrfID, swIfIndex)
	return Result{}
}
