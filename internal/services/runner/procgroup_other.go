//go:build !unix

package runner

import "os/exec"

// setProcessGroup is a no-op where process groups are not available;
// cancellation kills only the shell
func setProcessGroup(*exec.Cmd) {}
