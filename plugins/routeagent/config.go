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

package routeagent

import (
	"io/ioutil"
	"net"
	"os"
	"strings"
	"time"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/ghodss/yaml"
	"github.com/ligato/cn-infra/db/keyval/etcd"
	"github.com/ligato/cn-infra/logging"
	"github.com/ligato/cn-infra/servicelabel"
	"github.com/pkg/errors"

	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/ipamblock"
	"github.com/contiv/vpp-route-agent/plugins/routeagent/model/peerip"
	"github.com/contiv/vpp-route-agent/plugins/routeagent/vppcalls"
)

const (
	defaultEtcdEndpoint    = "127.0.0.1:2379"
	defaultEtcdDialTimeout = 10 * time.Second
	defaultEtcdOpTimeout   = 3 * time.Second
	defaultLogLevel        = "debug"
	redactedPassword       = "***"
)

// Config represents configuration for the route agent.
// The positional arguments of the agent binary override the corresponding
// values loaded from the configuration file.
type Config struct {
	// etcd prefix with IPAM block records
	WatchedKey string `json:"watchedKey"`

	// host name used in block affinities and in the peer IP key;
	// defaults to $MICROSERVICE_LABEL, then to the OS host name
	NodeName string `json:"nodeName,omitempty"`
	// root of the peer IP keys: /<namespace>/hosts/<host>/peerip/ipv4/1
	Namespace string `json:"namespace,omitempty"`

	UplinkIfIndex   uint32 `json:"uplinkIfIndex"`
	UplinkIP        string `json:"uplinkIP"`
	UplinkPrefixLen uint8  `json:"uplinkPrefixLen"`
	// when disabled, the uplink is expected to be set up and addressed already
	ConfigureUplink bool `json:"configureUplink"`

	VrfID uint32 `json:"vrfID,omitempty"`

	// replay blocks already present under WatchedKey before watching
	ReplayOnStart     bool   `json:"replayOnStart"`
	EventHistoryLimit int    `json:"eventHistoryLimit,omitempty"`
	LogLevel          string `json:"logLevel,omitempty"`
	VppSocket         string `json:"vppSocket,omitempty"`

	Etcd         etcd.Config `json:"etcd"`
	EtcdUsername string      `json:"etcdUsername,omitempty"`
	EtcdPassword string      `json:"etcdPassword,omitempty"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		WatchedKey:        ipamblock.DefaultKeyPrefix,
		Namespace:         peerip.DefaultNamespace,
		ConfigureUplink:   true,
		VrfID:             vppcalls.DefaultVrfID,
		ReplayOnStart:     true,
		EventHistoryLimit: DefaultEventHistoryLimit,
		LogLevel:          defaultLogLevel,
		Etcd: etcd.Config{
			Endpoints:         []string{defaultEtcdEndpoint},
			DialTimeout:       defaultEtcdDialTimeout,
			OpTimeout:         defaultEtcdOpTimeout,
			InsecureTransport: true,
		},
	}
}

// LoadConfigFile merges the YAML file into the given configuration.
// Fields missing in the file keep their current values.
func LoadConfigFile(path string, config *Config) error {
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

// Validate checks the configuration and fills in the node name if not set.
func (c *Config) Validate() error {
	if strings.Trim(c.WatchedKey, "/") == "" {
		return errors.New("watched key must not be empty")
	}
	if strings.Trim(c.Namespace, "/") == "" {
		return errors.New("namespace must not be empty")
	}
	if _, err := c.UplinkNetwork(); err != nil {
		return err
	}
	if _, known := parseLogLevel(c.LogLevel); !known {
		return errors.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.NodeName == "" {
		c.NodeName = defaultNodeName()
	}
	if c.NodeName == "" {
		return errors.New("unable to determine node name")
	}
	return nil
}

// UplinkNetwork returns the uplink address together with its subnet.
// The address must be usable by a host, i.e. not the network or the broadcast
// address of the subnet (does not apply to /31 and /32).
func (c *Config) UplinkNetwork() (*net.IPNet, error) {
	ip := net.ParseIP(c.UplinkIP)
	if ip == nil || ip.To4() == nil || strings.Contains(c.UplinkIP, ":") {
		return nil, errors.Errorf("uplink IP %q is not an IPv4 address", c.UplinkIP)
	}
	if c.UplinkPrefixLen == 0 || c.UplinkPrefixLen > 32 {
		return nil, errors.Errorf("invalid uplink prefix length %d", c.UplinkPrefixLen)
	}
	ip = ip.To4()
	mask := net.CIDRMask(int(c.UplinkPrefixLen), 32)
	if c.UplinkPrefixLen < 31 {
		first, last := cidr.AddressRange(&net.IPNet{IP: ip.Mask(mask), Mask: mask})
		if ip.Equal(first) || ip.Equal(last) {
			return nil, errors.Errorf("uplink IP %s is not a host address of /%d subnet",
				c.UplinkIP, c.UplinkPrefixLen)
		}
	}
	return &net.IPNet{IP: ip, Mask: mask}, nil
}

// EtcdClientConfig builds etcd client configuration including credentials.
func (c *Config) EtcdClientConfig() (*etcd.ClientConfig, error) {
	clientCfg, err := etcd.ConfigToClient(&c.Etcd)
	if err != nil {
		return nil, err
	}
	if c.EtcdUsername != "" {
		clientCfg.Username = c.EtcdUsername
		clientCfg.Password = c.EtcdPassword
	}
	return clientCfg, nil
}

// Redacted returns a copy of the configuration safe to be logged or exposed.
func (c *Config) Redacted() Config {
	redacted := *c
	if redacted.EtcdPassword != "" {
		redacted.EtcdPassword = redactedPassword
	}
	return redacted
}

// GetLogLevel returns the configured log level.
func (c *Config) GetLogLevel() logging.LogLevel {
	level, _ := parseLogLevel(c.LogLevel)
	return level
}

// defaultNodeName returns the microservice label, or the host name if not set.
func defaultNodeName() string {
	if label := os.Getenv(servicelabel.MicroserviceLabelEnvVar); label != "" {
		return label
	}
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	return hostname
}

func parseLogLevel(level string) (logging.LogLevel, bool) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		return logging.DebugLevel, true
	}
	parsed := logging.ParseLogLevel(name)
	if parsed.String() == name {
		return parsed, true
	}
	// both spellings are accepted for warnings
	if parsed == logging.WarnLevel && (name == "warn" || name == "warning") {
		return parsed, true
	}
	return parsed, false
}
