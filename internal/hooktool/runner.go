// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"bytes"
	"os/exec"

	"github.com/juju/errors"
)

// Runner executes a hook tool with the given arguments and returns
// its stdout. stdin is passed to the tool when non-nil.
type Runner interface {
	RunHookTool(tool string, args []string, stdin []byte) ([]byte, error)
}

// execRunner runs hook tools as subprocesses. The tools are placed on
// PATH by the unit agent and inherit the JUJU_CONTEXT_ID environment
// that ties them back to the running hook.
type execRunner struct{}

// NewExecRunner returns a Runner that invokes the real hook tools.
func NewExecRunner() Runner {
	return execRunner{}
}

// RunHookTool is part of the Runner interface.
func (execRunner) RunHookTool(tool string, args []string, stdin []byte) ([]byte, error) {
	command := exec.Command(tool, args...)
	if stdin != nil {
		command.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, errors.Annotatef(err, "running %s: %s", tool, msg)
		}
		return nil, errors.Annotatef(err, "running %s", tool)
	}
	return stdout.Bytes(), nil
}
