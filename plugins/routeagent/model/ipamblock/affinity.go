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

package ipamblock

import (
	"strings"

	"github.com/pkg/errors"
)

// hostTagPrefix tags block affinity with the owning host.
const hostTagPrefix = "host:"

// ErrNotHostTagged is returned by ParseAffinity for affinity strings that do
// not follow the "host:<name>" convention.
var ErrNotHostTagged = errors.New("affinity is not tagged with a host name")

// HostRef is the name of a host owning an IPAM block.
type HostRef string

// HostTag returns the affinity string of blocks owned by the given host.
func HostTag(host string) string {
	return hostTagPrefix + host
}

// ParseAffinity extracts the host name from "host:<name>".
func ParseAffinity(affinity string) (HostRef, error) {
	if !strings.HasPrefix(affinity, hostTagPrefix) {
		return "", ErrNotHostTagged
	}
	host := strings.TrimPrefix(affinity, hostTagPrefix)
	if host == "" {
		return "", ErrNotHostTagged
	}
	return HostRef(host), nil
}
