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
	"fmt"
)

// ParseError is returned when the value of a watched key is not a valid IPAM
// block record, or the affinity of a remote block is not tagged with a host name.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

// NewParseError is a constructor for ParseError.
func NewParseError(key, value string, err error) *ParseError {
	return &ParseError{Key: key, Value: value, Err: err}
}

// Error returns a string representation of the error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse block record under key %s (value %q): %v", e.Key, e.Value, e.Err)
}

// ResolutionError is returned when the uplink address of a remote host
// cannot be read from the store.
type ResolutionError struct {
	Host string
	Key  string
	Err  error // nil when the value is missing or empty
}

// NewResolutionError is a constructor for ResolutionError.
func NewResolutionError(host, key string, err error) *ResolutionError {
	return &ResolutionError{Host: host, Key: key, Err: err}
}

// Error returns a string representation of the error.
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to resolve peer IP of host %s (key %s): %v", e.Host, e.Key, e.Err)
	}
	return fmt.Sprintf("peer IP of host %s is not published (key %s)", e.Host, e.Key)
}

// RouteProgramError is returned when VPP fails or refuses to install a route.
type RouteProgramError struct {
	Dst     string
	NextHop string
	Retval  int32
	Err     error
}

// NewRouteProgramError is a constructor for RouteProgramError.
func NewRouteProgramError(dst, nextHop string, retval int32, err error) *RouteProgramError {
	return &RouteProgramError{Dst: dst, NextHop: nextHop, Retval: retval, Err: err}
}

// Error returns a string representation of the error.
func (e *RouteProgramError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("VPP refused route to %s via %s (retval %d)", e.Dst, e.NextHop, e.Retval)
	}
	return fmt.Sprintf("failed to program route to %s via %s (retval %d): %v",
		e.Dst, e.NextHop, e.Retval, e.Err)
}

// StartupStage identifies a step of the plugin startup.
type StartupStage int

const (
	// StageConfig is loading and validation of the configuration.
	StageConfig StartupStage = iota + 1
	// StageStore is connecting to etcd and publishing the local peer IP.
	StageStore
	// StageInterfaceUp is setting the uplink interface up.
	StageInterfaceUp
	// StageAddress is assigning the uplink IP address.
	StageAddress
	// StageVPP is connecting to VPP.
	StageVPP
)

var stageNames = map[StartupStage]string{
	StageConfig:      "config",
	StageStore:       "store",
	StageInterfaceUp: "interface-up",
	StageAddress:     "interface-address",
	StageVPP:         "vpp-connect",
}

// String returns name of the stage.
func (s StartupStage) String() string {
	if name, known := stageNames[s]; known {
		return name
	}
	return fmt.Sprintf("stage-%d", int(s))
}

// StartupError is returned by plugin initialization. The process is expected
// to exit with ExitCode().
type StartupError struct {
	Stage StartupStage
	Err   error
}

// NewStartupError is a constructor for StartupError.
func NewStartupError(stage StartupStage, err error) *StartupError {
	return &StartupError{Stage: stage, Err: err}
}

// Error returns a string representation of the error.
func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at stage %s: %v", e.Stage, e.Err)
}

// ExitCode returns the process exit code for the failed stage.
func (e *StartupError) ExitCode() int {
	return int(e.Stage)
}
