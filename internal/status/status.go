// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

// Status represents the workload status of the unit as reported
// back to Juju via the status-set hook tool.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Maintenance is set while the charm is processing a hook and
	// the workload is not yet known to be correctly configured.
	Maintenance Status = "maintenance"

	// Blocked is set when the operator must correct the charm
	// configuration before the charm can proceed.
	Blocked Status = "blocked"

	// Active is set when the configuration has been validated and
	// published to all relations.
	Active Status = "active"

	// Waiting is set when the charm is waiting on a resource or
	// relation it does not control.
	Waiting Status = "waiting"
)

// KnownWorkloadStatus returns true if status has a value
// that status-set will accept.
func KnownWorkloadStatus(status Status) bool {
	switch status {
	case Maintenance, Blocked, Active, Waiting:
		return true
	}
	return false
}
