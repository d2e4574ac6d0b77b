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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Keyword identifies IPAM block data in logs and metrics.
const Keyword = "ipamblock"

// DefaultKeyPrefix is the key prefix under which Calico IPAM stores IPv4 blocks.
const DefaultKeyPrefix = "/calico/ipam/v2/assignment/ipv4/block"

const (
	affinityField = "affinity"
	cidrField     = "cidr"
)

// errors returned by ParseBlock
var (
	ErrMalformed       = errors.New("block document is not a JSON object")
	ErrMissingAffinity = errors.Errorf("block document has no string field %q", affinityField)
	ErrMissingCIDR     = errors.Errorf("block document has no string field %q", cidrField)
)

// Block is the part of an IPAM block document the route agent acts upon.
// Other fields of the document (allocations, attributes, ...) are ignored.
type Block struct {
	Affinity string
	CIDR     string
}

// String returns a human-readable representation of the block.
func (b *Block) String() string {
	if b == nil {
		return "<nil>"
	}
	return fmt.Sprintf("<Affinity: %s, CIDR: %s>", b.Affinity, b.CIDR)
}

// IsRemote returns true if the block is not owned by the given local host.
// Only an exact match with "host:<localHost>" makes the block local.
func (b *Block) IsRemote(localHost string) bool {
	return b.Affinity != HostTag(localHost)
}

// ParseBlock decodes a block document. Both affinity and cidr must be present
// and be JSON strings, otherwise no block is returned.
func ParseBlock(data []byte) (*Block, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrMalformed
	}
	affinity, ok := stringField(doc, affinityField)
	if !ok {
		return nil, ErrMissingAffinity
	}
	cidr, ok := stringField(doc, cidrField)
	if !ok {
		return nil, ErrMissingCIDR
	}
	return &Block{Affinity: affinity, CIDR: cidr}, nil
}

// stringField returns the value of a field that must hold a JSON string.
func stringField(doc map[string]json.RawMessage, name string) (value string, ok bool) {
	raw, has := doc[name]
	if !has {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		// null, number, object, ...
		return "", false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}
