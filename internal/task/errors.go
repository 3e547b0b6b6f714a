package task

import "fmt"

// PermissionError rejects a write-classified statement. The message names
// the gate that was not satisfied so the caller knows which override is
// missing. Never retried.
type PermissionError struct {
	msg string
}

func (e *PermissionError) Error() string { return e.msg }

// errWriteNotRequested is the caller-side gate failure.
func errWriteNotRequested() *PermissionError {
	return &PermissionError{
		msg: "write statement rejected: caller did not set allow_write",
	}
}

// errWritesDisabled is the configuration-side gate failure.
func errWritesDisabled() *PermissionError {
	return &PermissionError{
		msg: "write statement rejected: writes are disabled in configuration (set MYSQL_AGENT_ALLOW_WRITES=true)",
	}
}

// ValidationError reports a missing required task parameter. Raised before
// any database call is attempted.
type ValidationError struct {
	Param string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}
