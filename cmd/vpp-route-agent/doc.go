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

// Package main contains the vpp-route-agent binary.
//
// Usage:
//   vpp-route-agent [flags] <watched-key> <uplink-if-index> <uplink-ip> <uplink-prefix-len>
//                   [<protocol> <host> <port> [<username> <password>]]
//
// The agent programs routes towards IPAM blocks of remote hosts into VPP.
// Positional arguments override the values from the optional YAML config file
// (-config). All flags can be set from the environment as well, e.g.
// HTTP_ADDR=:9191.
//
// Exit codes:
//   0 - stopped via SIGTERM or via the stop key
//   1 - invalid arguments or configuration
//   2 - etcd connection failure (including publishing of the local peer IP)
//   3 - uplink interface bring-up failure
//   4 - uplink address assignment failure
//   5 - VPP connection failure
package main
