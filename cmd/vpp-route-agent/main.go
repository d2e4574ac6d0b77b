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
	"os"
	"os/signal"
	"syscall"

	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ligato/cn-infra/logging"
	"github.com/ligato/cn-infra/logging/logrus"
	"github.com/ligato/cn-infra/rpc/rest"

	"github.com/contiv/vpp-route-agent/plugins/routeagent"
)

const (
	exitOK          = 0
	exitInvalidArgs = 1

	defaultHTTPAddr = ":9191"
)

var (
	configFile       = flag.String("config", "", "location of the route agent config file (YAML)")
	skipUplinkConfig = flag.Bool("skip-uplink-config", false, "do not set the uplink interface up nor assign the uplink IP")
	vppSocket        = flag.String("vpp-socket", "", "path to the VPP binary API socket")
	httpAddr         = flag.String("http-addr", defaultHTTPAddr, "address of the REST API and metrics, empty to disable")
)

var logger logging.Logger // global logger

// init initializes the global logger
func init() {
	logger = logrus.DefaultLogger()
	logger.SetLevel(logging.DebugLevel)
}

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		os.Exit(exitInvalidArgs)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	var httpPlugin *rest.Plugin
	if *httpAddr != "" {
		httpPlugin = newHTTPPlugin(*httpAddr)
		if err := httpPlugin.Init(); err != nil {
			logger.Errorf("Failed to initialize HTTP plugin: %v", err)
			os.Exit(exitInvalidArgs)
		}
	}

	agent := routeagent.NewPlugin(routeagent.UseConf(config), routeagent.UseDeps(func(deps *routeagent.Deps) {
		if httpPlugin != nil {
			deps.HTTPHandlers = httpPlugin
		}
		deps.Registerer = registry
	}))

	if err := agent.Init(); err != nil {
		exitOnStartupError(agent, err)
	}
	if err := agent.AfterInit(); err != nil {
		exitOnStartupError(agent, err)
	}
	if httpPlugin != nil {
		registerMetricsHandler(httpPlugin, registry)
		if err := httpPlugin.AfterInit(); err != nil {
			logger.Errorf("Failed to start HTTP server: %v", err)
		}
	}

	select {
	case <-agent.StopRequested():
		logger.Info("Stopping on request from etcd")
	case <-closeChanFiredBySigterm():
		logger.Info("Stopping on SIGTERM")
	}

	if httpPlugin != nil {
		if err := httpPlugin.Close(); err != nil {
			logger.Warnf("Failed to stop HTTP server: %v", err)
		}
	}
	if err := agent.Close(); err != nil {
		logger.Warnf("Failed to close route agent: %v", err)
	}
	os.Exit(exitOK)
}

// loadConfig merges defaults, the config file, the positional arguments and the flags.
func loadConfig() (*routeagent.Config, error) {
	config := routeagent.DefaultConfig()
	if *configFile != "" {
		if err := routeagent.LoadConfigFile(*configFile, config); err != nil {
			return nil, err
		}
	}
	if err := applyArgs(config, flag.Args(), *configFile != ""); err != nil {
		return nil, err
	}
	if *skipUplinkConfig {
		config.ConfigureUplink = false
	}
	if *vppSocket != "" {
		config.VppSocket = *vppSocket
	}
	return config, nil
}

// exitOnStartupError closes the agent and exits with the code of the failed stage.
func exitOnStartupError(agent *routeagent.RouteAgent, err error) {
	logger.Errorf("Route agent failed to start: %v", err)
	agent.Close()

	code := exitInvalidArgs
	if startupErr, isStartupErr := err.(*routeagent.StartupError); isStartupErr {
		code = startupErr.ExitCode()
	}
	os.Exit(code)
}

// closeChanFiredBySigterm creates close channel that will close when SIGTERM
// or SIGINT is detected from surrounding OS
func closeChanFiredBySigterm() chan struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	closeChan := make(chan struct{})
	go func() {
		<-sigChan
		close(closeChan)
	}()
	return closeChan
}
