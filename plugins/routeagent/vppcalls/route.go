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
	"strconv"
	"strings"
)

// maximum IPv4 prefix length
const maxIPv4PrefixLen = 32

// InvalidCIDRError is returned when an address block or a next hop cannot be
// translated into route parameters.
type InvalidCIDRError struct {
	Value  string
	Reason string
}

// Error returns the reason together with the offending value.
func (e *InvalidCIDRError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Value, e.Reason)
}

// TranslateRoute converts an IPv4 CIDR ("<network>/<prefix-len>") and a next hop
// address into route parameters. The network address is taken as is.
func TranslateRoute(cidr string, nextHop string) (*RouteParams, error) {
	parts := strings.Split(cidr, "/")
	if len(parts) != 2 {
		return nil, &InvalidCIDRError{Value: cidr, Reason: "expected <network>/<prefix-length>"}
	}

	prefixLen, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || prefixLen > maxIPv4PrefixLen {
		return nil, &InvalidCIDRError{Value: cidr, Reason: "prefix length must be an integer in [0,32]"}
	}

	network := parseIPv4(parts[0])
	if network == nil {
		return nil, &InvalidCIDRError{Value: cidr, Reason: "network is not an IPv4 address"}
	}

	via := parseIPv4(nextHop)
	if via == nil {
		return nil, &InvalidCIDRError{Value: nextHop, Reason: "next hop is not an IPv4 address"}
	}

	mask := net.CIDRMask(int(prefixLen), maxIPv4PrefixLen)
	return &RouteParams{
		DstNetwork:   network,
		PrefixLen:    uint8(prefixLen),
		NextHop:      via,
		NonCanonical: !network.Mask(mask).Equal(network),
	}, nil
}

// parseIPv4 parses dotted-quad IPv4 address into its 4-byte form.
// IPv6 notations (including IPv4-mapped) are refused.
func parseIPv4(s string) net.IP {
	if strings.Contains(s, ":") {
		return nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}
	return ip.To4()
}
