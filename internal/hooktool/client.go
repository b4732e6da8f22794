// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hooktool talks to the unit agent through the hook tools it
// exposes on PATH while a hook is running: config-get, is-leader,
// relation-ids, relation-set, secret-add, secret-grant, secret-ids
// and status-set. Tool output is requested in YAML and relation
// settings are fed over stdin so secret values never appear on a
// command line.
package hooktool

import (
	"sort"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/canonical/smtp-integrator-operator/internal/status"
)

// Client implements the charm's collaborator interfaces on top of the
// hook tools.
type Client struct {
	runner Runner
}

// NewClient returns a Client using runner to execute hook tools.
func NewClient(runner Runner) (*Client, error) {
	if runner == nil {
		return nil, errors.NotValidf("nil Runner")
	}
	return &Client{runner: runner}, nil
}

// ConfigGet returns the application configuration.
func (c *Client) ConfigGet() (map[string]interface{}, error) {
	out, err := c.runner.RunHookTool("config-get", []string{"--format=yaml"}, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var attrs map[string]interface{}
	if err := yaml.Unmarshal(out, &attrs); err != nil {
		return nil, errors.Annotate(err, "parsing config-get output")
	}
	return attrs, nil
}

// IsLeader returns whether this unit is the application leader.
func (c *Client) IsLeader() (bool, error) {
	out, err := c.runner.RunHookTool("is-leader", []string{"--format=yaml"}, nil)
	if err != nil {
		return false, errors.Trace(err)
	}
	var leader bool
	if err := yaml.Unmarshal(out, &leader); err != nil {
		return false, errors.Annotate(err, "parsing is-leader output")
	}
	return leader, nil
}

// RelationIDs returns the ids of the established relations on the
// named endpoint, in "<name>:<id>" form.
func (c *Client) RelationIDs(name string) ([]string, error) {
	out, err := c.runner.RunHookTool("relation-ids", []string{name, "--format=yaml"}, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var ids []string
	if err := yaml.Unmarshal(out, &ids); err != nil {
		return nil, errors.Annotatef(err, "parsing relation-ids output for %q", name)
	}
	return ids, nil
}

// RelationSet writes settings into the application databag of the
// given relation. Settings travel via stdin as a YAML document.
func (c *Client) RelationSet(relationID string, settings map[string]string) error {
	doc, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = c.runner.RunHookTool("relation-set",
		[]string{"-r", relationID, "--app", "--file", "-"}, doc)
	return errors.Trace(err)
}

// SecretAdd creates a new application-owned secret with the given
// content and returns its URI.
func (c *Client) SecretAdd(content map[string]string, label, description string) (string, error) {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(content)+4)
	for _, k := range keys {
		args = append(args, k+"="+content[k])
	}
	if label != "" {
		args = append(args, "--label", label)
	}
	if description != "" {
		args = append(args, "--description", description)
	}
	out, err := c.runner.RunHookTool("secret-add", args, nil)
	if err != nil {
		return "", errors.Trace(err)
	}
	return strings.TrimSpace(string(out)), nil
}

// SecretGrant grants the relation counterpart read access to the
// secret with the given URI.
func (c *Client) SecretGrant(id, relationID string) error {
	_, err := c.runner.RunHookTool("secret-grant",
		[]string{id, "--relation", relationID}, nil)
	return errors.Trace(err)
}

// SecretIDs returns the URIs of the secrets owned by the application.
func (c *Client) SecretIDs() ([]string, error) {
	out, err := c.runner.RunHookTool("secret-ids", []string{"--format=yaml"}, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var ids []string
	if err := yaml.Unmarshal(out, &ids); err != nil {
		return nil, errors.Annotate(err, "parsing secret-ids output")
	}
	return ids, nil
}

// StatusSet sets the workload status of the unit.
func (c *Client) StatusSet(st status.Status, message string) error {
	if !status.KnownWorkloadStatus(st) {
		return errors.NotValidf("workload status %q", st)
	}
	args := []string{st.String()}
	if message != "" {
		args = append(args, message)
	}
	_, err := c.runner.RunHookTool("status-set", args, nil)
	return errors.Trace(err)
}
