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
	"net"

	"github.com/pkg/errors"

	"github.com/ligato/vpp-agent/plugins/vpp/binapi/vpp1904/interfaces"
)

// InterfaceAdminUp implements FibAPI.
func (h *FibVppHandler) InterfaceAdminUp(swIfIndex uint32) error {
	req := &interfaces.SwInterfaceSetFlags{
		SwIfIndex:   swIfIndex,
		AdminUpDown: 1,
	}
	reply := &interfaces.SwInterfaceSetFlagsReply{}

	if err := h.callsChannel.SendRequest(req).ReceiveReply(reply); err != nil {
		return errors.Wrapf(err, "%s failed", req.GetMessageName())
	} else if reply.Retval != 0 {
		return errors.Errorf("%s returned %d", reply.GetMessageName(), reply.Retval)
	}
	return nil
}

// AddInterfaceIP implements FibAPI.
func (h *FibVppHandler) AddInterfaceIP(swIfIndex uint32, addr net.IP, prefixLen uint8) error {
	ipv4 := addr.To4()
	if ipv4 == nil {
		return errors.Errorf("%v is not an IPv4 address", addr)
	}
	if prefixLen > maxIPv4PrefixLen {
		return errors.Errorf("invalid prefix length %d", prefixLen)
	}
	req := &interfaces.SwInterfaceAddDelAddress{
		SwIfIndex:     swIfIndex,
		IsAdd:         1,
		IsIPv6:        0,
		AddressLength: prefixLen,
		Address:       []byte(ipv4),
	}
	reply := &interfaces.SwInterfaceAddDelAddressReply{}

	if err := h.callsChannel.SendRequest(req).ReceiveReply(reply); err != nil {
		return errors.Wrapf(err, "%s failed", req.GetMessageName())
	} else if reply.Retval != 0 {
		return errors.Errorf("%s returned %d", reply.GetMessageName(), reply.Retval)
	}
	return nil
}
