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

package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/pkg/errors"

	"github.com/contiv/vpp-route-agent/plugins/routeagent"
)

// number of positional arguments accepted by the agent
const (
	requiredArgs = 4
	withEtcdArgs = requiredArgs + 3
	withAuthArgs = withEtcdArgs + 2
)

const argsUsage = "<watched-key> <uplink-if-index> <uplink-ip> <uplink-prefix-len> " +
	"[<protocol> <host> <port> [<username> <password>]]"

// applyArgs overrides the configuration with the positional arguments.
// Without a config file the four required arguments must be present.
func applyArgs(config *routeagent.Config, args []string, withConfigFile bool) error {
	switch len(args) {
	case requiredArgs, withEtcdArgs, withAuthArgs:
	case 0:
		if withConfigFile {
			return nil
		}
		fallthrough
	default:
		return errors.Errorf("unexpected number of arguments (%d), usage: %s", len(args), argsUsage)
	}

	config.WatchedKey = args[0]
	ifIndex, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return errors.Errorf("invalid uplink interface index %q", args[1])
	}
	config.UplinkIfIndex = uint32(ifIndex)
	config.UplinkIP = args[2]
	prefixLen, err := strconv.ParseUint(args[3], 10, 8)
	if err != nil {
		return errors.Errorf("invalid uplink prefix length %q", args[3])
	}
	config.UplinkPrefixLen = uint8(prefixLen)

	if len(args) >= withEtcdArgs {
		endpoint, err := etcdEndpoint(args[4], args[5], args[6])
		if err != nil {
			return err
		}
		config.Etcd.Endpoints = []string{endpoint}
		config.Etcd.InsecureTransport = args[4] == "http"
	}
	if len(args) == withAuthArgs {
		config.EtcdUsername = args[7]
		config.EtcdPassword = args[8]
	}
	return nil
}

// etcdEndpoint builds etcd client URL from its parts.
func etcdEndpoint(protocol, host, port string) (string, error) {
	if protocol != "http" && protocol != "https" {
		return "", errors.Errorf("unsupported etcd protocol %q", protocol)
	}
	if host == "" {
		return "", errors.New("empty etcd host")
	}
	if p, err := strconv.ParseUint(port, 10, 16); err != nil || p == 0 {
		return "", errors.Errorf("invalid etcd port %q", port)
	}
	return fmt.Sprintf("%s://%s", protocol, net.JoinHostPort(host, port)), nil
}
