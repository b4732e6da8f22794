// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package state validates the raw charm configuration and produces
// the immutable snapshot the rest of the charm works from.
package state

import (
	"strings"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/juju/environschema.v1"

	"github.com/canonical/smtp-integrator-operator/internal/smtp"
)

const (
	hostKey              = "host"
	portKey              = "port"
	userKey              = "user"
	passwordKey          = "password"
	authTypeKey          = "auth_type"
	transportSecurityKey = "transport_security"
	domainKey            = "domain"
)

var configSchema = environschema.Fields{
	hostKey: {
		Description: "The hostname or IP address of the outgoing SMTP relay.",
		Type:        environschema.Tstring,
		Mandatory:   true,
	},
	portKey: {
		Description: "The port of the outgoing SMTP relay.",
		Type:        environschema.Tint,
	},
	userKey: {
		Description: "The username to authenticate to the SMTP relay.",
		Type:        environschema.Tstring,
	},
	passwordKey: {
		Description: "The password to authenticate to the SMTP relay.",
		Type:        environschema.Tstring,
		Secret:      true,
	},
	authTypeKey: {
		Description: "The type of authentication towards the SMTP relay.",
		Type:        environschema.Tstring,
	},
	transportSecurityKey: {
		Description: "The security protocol to use for the SMTP relay connection.",
		Type:        environschema.Tstring,
	},
	domainKey: {
		Description: "The domain used by the emails sent from the SMTP relay.",
		Type:        environschema.Tstring,
	},
}

var configDefaults = schema.Defaults{
	portKey:              25,
	userKey:              schema.Omit,
	passwordKey:          schema.Omit,
	authTypeKey:          string(smtp.AuthNone),
	transportSecurityKey: string(smtp.TransportNone),
	domainKey:            schema.Omit,
}

// State is the validated snapshot of the charm configuration. It is
// rebuilt from config-get on every hook and never persisted; the
// password travels into the Juju secret store and only its reference
// is shared beyond the current hook.
type State struct {
	Host              string
	Port              int
	User              string
	Password          string
	PasswordID        string
	AuthType          smtp.AuthType
	TransportSecurity smtp.TransportSecurity
	Domain            string
}

// FromConfig validates attrs against the config schema and returns
// the resulting snapshot. Any constraint violation is reported as an
// errors.NotValid error carrying a message suitable for a blocked
// status.
func FromConfig(attrs map[string]interface{}) (*State, error) {
	fields, _, err := configSchema.ValidationSchema()
	if err != nil {
		return nil, errors.Trace(err)
	}
	out, err := schema.FieldMap(fields, configDefaults).Coerce(attrs, nil)
	if err != nil {
		return nil, errors.NewNotValid(err, "invalid smtp configuration")
	}
	valid := out.(map[string]interface{})

	st := &State{
		Host:              valid[hostKey].(string),
		Port:              valid[portKey].(int),
		User:              stringAttr(valid, userKey),
		Password:          stringAttr(valid, passwordKey),
		AuthType:          smtp.AuthType(stringAttr(valid, authTypeKey)),
		TransportSecurity: smtp.TransportSecurity(stringAttr(valid, transportSecurityKey)),
		Domain:            stringAttr(valid, domainKey),
	}
	if st.Host == "" {
		return nil, errors.NotValidf("empty host")
	}
	if st.Port < 1 || st.Port > 65535 {
		return nil, errors.NotValidf("port %d outside range [1, 65535]", st.Port)
	}
	if !smtp.ValidAuthType(st.AuthType) {
		return nil, errors.NotValidf("auth_type %q, expected one of %s",
			st.AuthType, strings.Join(smtp.ValidAuthTypeNames(), ", "))
	}
	if !smtp.ValidTransportSecurity(st.TransportSecurity) {
		return nil, errors.NotValidf("transport_security %q, expected one of %s",
			st.TransportSecurity, strings.Join(smtp.ValidTransportSecurityNames(), ", "))
	}
	return st, nil
}

func stringAttr(attrs map[string]interface{}, key string) string {
	v, _ := attrs[key].(string)
	return v
}

// RelationData returns the current-version relation payload, exposing
// the password by secret reference only.
func (st *State) RelationData() smtp.RelationData {
	return smtp.RelationData{
		Host:              st.Host,
		Port:              st.Port,
		User:              st.User,
		PasswordID:        st.PasswordID,
		AuthType:          st.AuthType,
		TransportSecurity: st.TransportSecurity,
		Domain:            st.Domain,
	}
}

// LegacyRelationData returns the legacy relation payload, exposing
// the password in plain text for consumers that predate secrets.
func (st *State) LegacyRelationData() smtp.RelationData {
	return smtp.RelationData{
		Host:              st.Host,
		Port:              st.Port,
		User:              st.User,
		Password:          st.Password,
		AuthType:          st.AuthType,
		TransportSecurity: st.TransportSecurity,
		Domain:            st.Domain,
	}
}
