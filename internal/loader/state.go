// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package loader

// State is the lifecycle position of one module.
type State int

// Module states. ActivationFailed and Activated are terminal.
const (
	StateDiscovered State = iota
	StateInstantiated
	StateCommandsRegistered
	StateActivated
	StateActivationFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateInstantiated:
		return "instantiated"
	case StateCommandsRegistered:
		return "commands_registered"
	case StateActivated:
		return "activated"
	case StateActivationFailed:
		return "activation_failed"
	default:
		return "unknown"
	}
}

// pending reports whether a module in state s still waits for OnLoad.
func (s State) pending() bool {
	return s == StateInstantiated || s == StateCommandsRegistered
}
