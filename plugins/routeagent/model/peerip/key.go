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

// Package peerip defines the key-value store layout used by route agents to
// publish the uplink address of their host.
package peerip

import (
	"strings"
)

// Keyword defines the keyword identifying peer IP data.
const Keyword = "peerip"

// DefaultNamespace is the root of the route agent key space.
const DefaultNamespace = "vpp-calico"

const (
	hostsSegment = "hosts"
	// only one IPv4 uplink per host is published
	ipv4Suffix = "peerip/ipv4/1"
)

// Key returns the key under which the uplink IPv4 address of the given host
// is stored: /<namespace>/hosts/<host>/peerip/ipv4/1
func Key(namespace, host string) string {
	return KeyPrefix(namespace) + host + "/" + ipv4Suffix
}

// KeyPrefix returns the common prefix of all peer IP keys in the namespace.
func KeyPrefix(namespace string) string {
	return "/" + strings.Trim(namespace, "/") + "/" + hostsSegment + "/"
}

// ParseKey parses host name from a key identifying peer IP data.
// Returns empty string if the key does not belong to the namespace.
func ParseKey(namespace, key string) (host string) {
	prefix := KeyPrefix(namespace)
	suffix := "/" + ipv4Suffix
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
		return ""
	}
	host = strings.TrimSuffix(strings.TrimPrefix(key, prefix), suffix)
	if host == "" || strings.Contains(host, "/") {
		return ""
	}
	return host
}
