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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ligato/cn-infra/logging"
	"github.com/ligato/cn-infra/servicelabel"
	. "github.com/onsi/gomega"
)

func validConfig() *Config {
	config := DefaultConfig()
	config.NodeName = localHost
	config.UplinkIfIndex = 1
	config.UplinkIP = "192.168.16.1"
	config.UplinkPrefixLen = 24
	return config
}

func TestDefaultConfig(t *testing.T) {
	RegisterTestingT(t)

	config := DefaultConfig()
	Expect(config.WatchedKey).To(Equal("/calico/ipam/v2/assignment/ipv4/block"))
	Expect(config.Namespace).To(Equal("vpp-calico"))
	Expect(config.ConfigureUplink).To(BeTrue())
	Expect(config.ReplayOnStart).To(BeTrue())
	Expect(config.VrfID).To(BeZero())
	Expect(config.Etcd.Endpoints).To(Equal([]string{"127.0.0.1:2379"}))
	Expect(config.GetLogLevel()).To(Equal(logging.DebugLevel))
}

func TestLoadConfigFile(t *testing.T) {
	RegisterTestingT(t)

	dir, err := ioutil.TempDir("", "routeagent")
	Expect(err).ShouldNot(HaveOccurred())
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "routeagent.yaml")
	Expect(ioutil.WriteFile(path, []byte(`
nodeName: node-x
uplinkIfIndex: 3
uplinkIP: 10.20.0.2
uplinkPrefixLen: 16
replayOnStart: false
logLevel: info
etcd:
  endpoints:
    - "10.20.0.100:2379"
  dial-timeout: 5000000000
etcdUsername: root
etcdPassword: secret
`), 0644)).To(Succeed())

	config := DefaultConfig()
	Expect(LoadConfigFile(path, config)).To(Succeed())

	Expect(config.NodeName).To(Equal("node-x"))
	Expect(config.UplinkIfIndex).To(BeEquivalentTo(3))
	Expect(config.UplinkIP).To(Equal("10.20.0.2"))
	Expect(config.UplinkPrefixLen).To(BeEquivalentTo(16))
	Expect(config.ReplayOnStart).To(BeFalse())
	Expect(config.GetLogLevel()).To(Equal(logging.InfoLevel))
	Expect(config.Etcd.Endpoints).To(Equal([]string{"10.20.0.100:2379"}))
	Expect(config.Etcd.DialTimeout).To(Equal(5 * time.Second))

	// not in the file
	Expect(config.Namespace).To(Equal("vpp-calico"))
	Expect(config.ConfigureUplink).To(BeTrue())
	Expect(config.Validate()).To(Succeed())

	redacted := config.Redacted()
	Expect(redacted.EtcdPassword).To(Equal("***"))
	Expect(config.EtcdPassword).To(Equal("secret"))

	clientCfg, err := config.EtcdClientConfig()
	Expect(err).ShouldNot(HaveOccurred())
	Expect(clientCfg.Username).To(Equal("root"))
	Expect(clientCfg.Password).To(Equal("secret"))

	Expect(LoadConfigFile(filepath.Join(dir, "missing.yaml"), config)).ToNot(Succeed())

	Expect(ioutil.WriteFile(path, []byte("uplinkIfIndex: [1"), 0644)).To(Succeed())
	Expect(LoadConfigFile(path, config)).ToNot(Succeed())
}

func TestValidateConfig(t *testing.T) {
	RegisterTestingT(t)

	Expect(validConfig().Validate()).To(Succeed())

	invalid := []func(*Config){
		func(c *Config) { c.WatchedKey = "/" },
		func(c *Config) { c.Namespace = "" },
		func(c *Config) { c.UplinkIP = "" },
		func(c *Config) { c.UplinkIP = "fd00::1" },
		func(c *Config) { c.UplinkIP = "::ffff:192.168.16.1" },
		func(c *Config) { c.UplinkPrefixLen = 0 },
		func(c *Config) { c.UplinkPrefixLen = 33 },
		func(c *Config) { c.UplinkIP = "192.168.16.0" },   // network address
		func(c *Config) { c.UplinkIP = "192.168.16.255" }, // broadcast address
		func(c *Config) { c.LogLevel = "verbose" },
	}
	for i, modify := range invalid {
		config := validConfig()
		modify(config)
		Expect(config.Validate()).ToNot(Succeed(), "invalid config #%d", i)
	}

	// point-to-point and host subnets have no network/broadcast address
	config := validConfig()
	config.UplinkIP = "192.168.16.0"
	config.UplinkPrefixLen = 31
	Expect(config.Validate()).To(Succeed())
	config.UplinkPrefixLen = 32
	Expect(config.Validate()).To(Succeed())
}

func TestUplinkNetwork(t *testing.T) {
	RegisterTestingT(t)

	uplink, err := validConfig().UplinkNetwork()
	Expect(err).ShouldNot(HaveOccurred())
	Expect(uplink.String()).To(Equal("192.168.16.1/24"))
	Expect(uplink.IP).To(HaveLen(4))
}

func TestNodeNameDefault(t *testing.T) {
	RegisterTestingT(t)

	prev, hadPrev := os.LookupEnv(servicelabel.MicroserviceLabelEnvVar)
	defer func() {
		if hadPrev {
			os.Setenv(servicelabel.MicroserviceLabelEnvVar, prev)
		} else {
			os.Unsetenv(servicelabel.MicroserviceLabelEnvVar)
		}
	}()

	Expect(os.Setenv(servicelabel.MicroserviceLabelEnvVar, "node-label")).To(Succeed())
	config := validConfig()
	config.NodeName = ""
	Expect(config.Validate()).To(Succeed())
	Expect(config.NodeName).To(Equal("node-label"))

	// explicit name wins
	config = validConfig()
	Expect(config.Validate()).To(Succeed())
	Expect(config.NodeName).To(Equal(localHost))

	Expect(os.Unsetenv(servicelabel.MicroserviceLabelEnvVar)).To(Succeed())
	hostname, err := os.Hostname()
	Expect(err).ShouldNot(HaveOccurred())
	config = validConfig()
	config.NodeName = ""
	Expect(config.Validate()).To(Succeed())
	Expect(config.NodeName).To(Equal(hostname))
}

func TestLogLevels(t *testing.T) {
	RegisterTestingT(t)

	levels := map[string]logging.LogLevel{
		"":        logging.DebugLevel,
		"debug":   logging.DebugLevel,
		"INFO":    logging.InfoLevel,
		"warn":    logging.WarnLevel,
		"Warning": logging.WarnLevel,
		"error":   logging.ErrorLevel,
		"fatal":   logging.FatalLevel,
		"panic":   logging.PanicLevel,
	}
	for name, level := range levels {
		config := validConfig()
		config.LogLevel = name
		Expect(config.Validate()).To(Succeed(), "log level %q", name)
		Expect(config.GetLogLevel()).To(Equal(level), "log level %q", name)
	}

	for _, name := range []string{"verbose", "infos", "warn ing"} {
		config := validConfig()
		config.LogLevel = name
		Expect(config.Validate()).ToNot(Succeed(), "log level %q", name)
	}
}

func TestEtcdEndpointsFromEnv(t *testing.T) {
	RegisterTestingT(t)

	os.Setenv("ETCD_ENDPOINTS", "10.20.0.1:2379,10.20.0.2:2379")
	defer os.Unsetenv("ETCD_ENDPOINTS")

	config := validConfig()
	config.Etcd.Endpoints = nil
	Expect(config.Validate()).To(Succeed())

	clientCfg, err := config.EtcdClientConfig()
	Expect(err).ShouldNot(HaveOccurred())
	Expect(clientCfg.Endpoints).To(Equal([]string{"10.20.0.1:2379", "10.20.0.2:2379"}))
}
