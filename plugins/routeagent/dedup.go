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

// shouldProcess returns false if the event exactly repeats the last accepted
// event. Otherwise the event is remembered and true is returned.
// Runs before the action filter, so repeated updates and deletes are
// suppressed as well.
func (r *Reconciler) shouldProcess(event ChangeEvent) bool {
	if r.lastEvent != nil && *r.lastEvent == event {
		return false
	}
	accepted := event
	r.lastEvent = &accepted
	return true
}
