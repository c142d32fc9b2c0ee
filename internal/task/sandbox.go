package task

import "time"

// SandboxState is the ephemeral lifecycle state of one worker sandbox.
type SandboxState string

const (
	SandboxStarting   SandboxState = "starting"
	SandboxReady      SandboxState = "ready"
	SandboxWorking    SandboxState = "working"
	SandboxCompleting SandboxState = "completing"
	SandboxTerminated SandboxState = "terminated"
	SandboxError      SandboxState = "error"
)

// SandboxHealth is the out-of-band liveness block attached to a sandbox.
type SandboxHealth struct {
	LastPing            time.Time `json:"last_ping"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// SandboxStatus describes one worker sandbox at a point in time.
type SandboxStatus struct {
	ID          string        `json:"id"`
	State       SandboxState  `json:"state"`
	CurrentTask string        `json:"current_task,omitempty"`
	Health      SandboxHealth `json:"health"`
}
