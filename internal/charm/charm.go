// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm implements the smtp-integrator charm logic: it turns
// lifecycle hooks into relation data writes, storing the configured
// password as a Juju secret and granting relation counterparts read
// access to it.
package charm

import (
	"github.com/juju/errors"

	"github.com/canonical/smtp-integrator-operator/internal/hook"
	"github.com/canonical/smtp-integrator-operator/internal/smtp"
	"github.com/canonical/smtp-integrator-operator/internal/state"
	"github.com/canonical/smtp-integrator-operator/internal/status"
)

// passwordSecretLabel is the label the charm attaches to the secret
// holding the SMTP password. The application owns no other secret.
const passwordSecretLabel = "smtp-password"

// Logger represents the methods used by the charm to log information.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
}

// CharmConfig provides access to the application configuration.
type CharmConfig interface {
	ConfigGet() (map[string]interface{}, error)
}

// Leadership reports whether this unit is the application leader.
type Leadership interface {
	IsLeader() (bool, error)
}

// Relations reads and writes relation data for this application.
type Relations interface {
	RelationIDs(name string) ([]string, error)
	RelationSet(relationID string, settings map[string]string) error
}

// Secrets provides access to the Juju secret store.
type Secrets interface {
	SecretAdd(content map[string]string, label, description string) (string, error)
	SecretGrant(id, relationID string) error
	SecretIDs() ([]string, error)
}

// Status sets the workload status of the unit.
type Status interface {
	StatusSet(st status.Status, message string) error
}

// Config holds the collaborators required to run the charm.
type Config struct {
	CharmConfig CharmConfig
	Leadership  Leadership
	Relations   Relations
	Secrets     Secrets
	Status      Status
	Logger      Logger
}

// Validate returns an error if config cannot drive the charm.
func (config Config) Validate() error {
	if config.CharmConfig == nil {
		return errors.NotValidf("nil CharmConfig")
	}
	if config.Leadership == nil {
		return errors.NotValidf("nil Leadership")
	}
	if config.Relations == nil {
		return errors.NotValidf("nil Relations")
	}
	if config.Secrets == nil {
		return errors.NotValidf("nil Secrets")
	}
	if config.Status == nil {
		return errors.NotValidf("nil Status")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

type handler func(*state.State, hook.Info) error

// Charm reacts to the hooks delivered by the unit agent.
type Charm struct {
	config   Config
	handlers map[hook.Kind]handler
}

// NewCharm returns a Charm backed by config, or an error.
func NewCharm(config Config) (*Charm, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	c := &Charm{config: config}
	c.handlers = map[hook.Kind]handler{
		hook.ConfigChanged:             c.configChanged,
		hook.SMTPRelationCreated:       c.relationCreated,
		hook.SMTPLegacyRelationCreated: c.legacyRelationCreated,
	}
	return c, nil
}

// RunHook validates the charm configuration and dispatches info to
// the matching handler. Invalid configuration blocks the unit rather
// than failing the hook; any other error propagates so the unit agent
// can redeliver the hook.
func (c *Charm) RunHook(info hook.Info) error {
	if err := info.Validate(); err != nil {
		return errors.Trace(err)
	}
	h, ok := c.handlers[info.Kind]
	if !ok {
		c.config.Logger.Debugf("no handler for %q hook, skipping", info.Kind)
		return nil
	}
	st, err := c.buildState()
	if errors.Is(err, errors.NotValid) {
		c.config.Logger.Infof("blocking on invalid configuration: %v", err)
		return errors.Trace(c.config.Status.StatusSet(status.Blocked, err.Error()))
	} else if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(h(st, info))
}

// buildState validates the charm configuration and resolves the
// password secret reference, if one has already been created.
func (c *Charm) buildState() (*state.State, error) {
	attrs, err := c.config.CharmConfig.ConfigGet()
	if err != nil {
		return nil, errors.Annotate(err, "reading charm config")
	}
	st, err := state.FromConfig(attrs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ids, err := c.config.Secrets.SecretIDs()
	if err != nil {
		return nil, errors.Annotate(err, "listing owned secrets")
	}
	if len(ids) > 0 {
		st.PasswordID = ids[0]
	}
	return st, nil
}

func (c *Charm) relationCreated(st *state.State, info hook.Info) error {
	leader, err := c.config.Leadership.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		return nil
	}
	if st.PasswordID != "" {
		if err := c.config.Secrets.SecretGrant(st.PasswordID, info.RelationID); err != nil {
			return errors.Annotatef(err, "granting password secret to %q", info.RelationID)
		}
	}
	return errors.Trace(c.updateRelation(info.RelationID, st.RelationData()))
}

func (c *Charm) legacyRelationCreated(st *state.State, info hook.Info) error {
	leader, err := c.config.Leadership.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		return nil
	}
	return errors.Trace(c.updateRelation(info.RelationID, st.LegacyRelationData()))
}

func (c *Charm) configChanged(st *state.State, _ hook.Info) error {
	if err := c.config.Status.StatusSet(status.Maintenance, "configuring charm"); err != nil {
		return errors.Trace(err)
	}
	// Secret creation happens before any relation write so that the
	// new reference is visible to every payload in this hook.
	if err := c.storePasswordAsSecret(st); err != nil {
		return errors.Trace(err)
	}
	if err := c.updateRelations(st); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.config.Status.StatusSet(status.Active, ""))
}

// storePasswordAsSecret stores the configured password in the secret
// store, unless it is already there.
func (c *Charm) storePasswordAsSecret(st *state.State) error {
	if st.Password == "" || st.PasswordID != "" {
		return nil
	}
	id, err := c.config.Secrets.SecretAdd(
		map[string]string{"password": st.Password},
		passwordSecretLabel, "SMTP relay password")
	if err != nil {
		return errors.Annotate(err, "storing password as secret")
	}
	c.config.Logger.Debugf("stored smtp password as secret %q", id)
	st.PasswordID = id
	return nil
}

// updateRelations rewrites the databag of every established relation
// on both endpoints. Only the leader writes application relation
// data.
func (c *Charm) updateRelations(st *state.State) error {
	leader, err := c.config.Leadership.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		return nil
	}
	current, err := c.config.Relations.RelationIDs(smtp.RelationName)
	if err != nil {
		return errors.Trace(err)
	}
	for _, id := range current {
		if err := c.updateRelation(id, st.RelationData()); err != nil {
			return errors.Trace(err)
		}
	}
	legacy, err := c.config.Relations.RelationIDs(smtp.LegacyRelationName)
	if err != nil {
		return errors.Trace(err)
	}
	for _, id := range legacy {
		if err := c.updateRelation(id, st.LegacyRelationData()); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (c *Charm) updateRelation(relationID string, data smtp.RelationData) error {
	return errors.Annotatef(
		c.config.Relations.RelationSet(relationID, data.Databag()),
		"updating relation %q", relationID)
}
