// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hook provides types that describe the lifecycle hooks
// delivered to the charm by the unit agent.
package hook

import (
	"github.com/juju/errors"
)

// Kind enumerates the hooks the charm can be invoked for. Relation
// hook names are derived from the relation names declared in
// metadata.yaml.
type Kind string

const (
	// ConfigChanged is delivered whenever the application
	// configuration may have changed, and once after install.
	ConfigChanged Kind = "config-changed"

	// SMTPRelationCreated is delivered when a relation on the
	// current-version smtp endpoint is created.
	SMTPRelationCreated Kind = "smtp-relation-created"

	// SMTPLegacyRelationCreated is delivered when a relation on the
	// legacy smtp endpoint is created.
	SMTPLegacyRelationCreated Kind = "smtp-legacy-relation-created"
)

// IsRelation returns whether the hook kind is scoped to a relation.
func (kind Kind) IsRelation() bool {
	switch kind {
	case SMTPRelationCreated, SMTPLegacyRelationCreated:
		return true
	}
	return false
}

// Info holds details required to run a hook. Not all fields are
// relevant to all Kind values.
type Info struct {
	Kind Kind

	// RelationID identifies the relation associated with the hook,
	// in the "<name>:<id>" form used by the hook tools. It is only
	// set when Kind indicates a relation hook.
	RelationID string
}

// Validate returns an error if the info is not valid.
func (hi Info) Validate() error {
	if hi.Kind == "" {
		return errors.NotValidf("hook with empty kind")
	}
	if hi.Kind.IsRelation() && hi.RelationID == "" {
		return errors.NotValidf("%q hook without relation id", hi.Kind)
	}
	return nil
}
