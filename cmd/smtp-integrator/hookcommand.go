// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"
	"path"

	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"

	"github.com/canonical/smtp-integrator-operator/internal/charm"
	"github.com/canonical/smtp-integrator-operator/internal/hook"
	"github.com/canonical/smtp-integrator-operator/internal/hooktool"
)

var logger = loggo.GetLogger("smtpintegrator")

const hookCommandDoc = `
smtp-integrator runs a single charm hook to completion. The hook name
is taken from the first argument if given, otherwise from the
JUJU_HOOK_NAME or JUJU_DISPATCH_PATH environment set by the unit
agent's dispatch mechanism.
`

type hookCommand struct {
	cmd.CommandBase

	hookName      string
	loggingConfig string

	runHook func(hook.Info) error
}

func newHookCommand() cmd.Command {
	c := &hookCommand{}
	c.runHook = c.runCharmHook
	return c
}

// NewHookCommandForTest returns a hookCommand that dispatches hooks
// to runHook instead of building the real charm.
func NewHookCommandForTest(runHook func(hook.Info) error) cmd.Command {
	return &hookCommand{runHook: runHook}
}

// Info is part of the cmd.Command interface.
func (c *hookCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "smtp-integrator",
		Args:    "[<hook-name>]",
		Purpose: "run a smtp-integrator charm hook",
		Doc:     hookCommandDoc,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *hookCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.loggingConfig, "logging-config", "",
		"loggo configuration to apply before running the hook")
}

// Init is part of the cmd.Command interface.
func (c *hookCommand) Init(args []string) error {
	if len(args) > 0 {
		c.hookName = args[0]
		args = args[1:]
	}
	return cmd.CheckEmpty(args)
}

// Run is part of the cmd.Command interface.
func (c *hookCommand) Run(ctx *cmd.Context) error {
	if c.loggingConfig != "" {
		if err := loggo.ConfigureLoggers(c.loggingConfig); err != nil {
			return errors.Trace(err)
		}
	}
	name := c.hookName
	if name == "" {
		name = hookNameFromEnv()
	}
	if name == "" {
		return errors.New("no hook name supplied and none found in the environment")
	}
	unitName, err := getenv("JUJU_UNIT_NAME")
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := names.UnitApplication(unitName); err != nil {
		return errors.Trace(err)
	}
	logger.Debugf("running %q hook for %q", name, unitName)
	return errors.Trace(c.runHook(hook.Info{
		Kind:       hook.Kind(name),
		RelationID: os.Getenv("JUJU_RELATION_ID"),
	}))
}

func (c *hookCommand) runCharmHook(info hook.Info) error {
	client, err := hooktool.NewClient(hooktool.NewExecRunner())
	if err != nil {
		return errors.Trace(err)
	}
	ch, err := charm.NewCharm(charm.Config{
		CharmConfig: client,
		Leadership:  client,
		Relations:   client,
		Secrets:     client,
		Status:      client,
		Logger:      logger,
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(ch.RunHook(info))
}

// hookNameFromEnv resolves the hook name the unit agent invoked us
// for. JUJU_HOOK_NAME is set for legacy hook invocations,
// JUJU_DISPATCH_PATH (e.g. "hooks/config-changed") for dispatch.
func hookNameFromEnv() string {
	if name := os.Getenv("JUJU_HOOK_NAME"); name != "" {
		return name
	}
	if dispatchPath := os.Getenv("JUJU_DISPATCH_PATH"); dispatchPath != "" {
		return path.Base(dispatchPath)
	}
	return ""
}

func getenv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", errors.Errorf("%s not set", name)
	}
	return value, nil
}
