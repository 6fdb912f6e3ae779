package cli

import "fmt"

// Exit codes for the dialguard command. Dialer integrations branch on
// these, so a blocked verdict must stay distinguishable from a broken
// invocation.
const (
	ExitFailure = 1
	ExitConfig  = 2
	ExitBlocked = 3
)

// ExitCoder is implemented by errors that carry a process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// ConfigError reports a bad or unloadable configuration.
type ConfigError struct {
	Field   string
	Message string
}

// NewConfigError creates a ConfigError. Field may be empty when the
// whole config failed to load.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

func (e *ConfigError) ExitCode() int { return ExitConfig }

// CommandError reports a command that started but failed.
type CommandError struct {
	Command string
	Err     error
}

// NewCommandError wraps err with the name of the failing command.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) ExitCode() int { return ExitFailure }

// BlockedError reports a clearance check that ran to completion and
// denied the attempt. It is not a failure of the tool.
type BlockedError struct {
	Rule string
}

// NewBlockedError creates a BlockedError naming the blocking rule.
func NewBlockedError(rule string) *BlockedError {
	return &BlockedError{Rule: rule}
}

func (e *BlockedError) Error() string {
	return "attempt blocked by " + e.Rule
}

func (e *BlockedError) ExitCode() int { return ExitBlocked }
