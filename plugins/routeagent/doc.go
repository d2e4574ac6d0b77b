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

// Package routeagent implements the route agent plugin.
//
// The plugin watches IPAM block records published by Calico into etcd and, for
// every block owned by a remote host, installs a route into the VPP FIB that
// forwards traffic of the block towards the uplink address advertised
// by the owning host. Each change notification passes through a fixed pipeline
// (dedup, action filter, record parsing, locality check, peer resolution,
// route translation, route programming), which stops at the first failure
// or at the first stage that finds the notification irrelevant.
//
// At startup the plugin optionally brings the uplink interface up, assigns
// the uplink address and publishes it under the "peerip" key of the local
// host, so that the other hosts can route towards the local blocks.
package routeagent
