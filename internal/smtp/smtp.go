// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package smtp defines the wire shape of the data published over the
// smtp relation, for both the current and the legacy interface
// versions. Legacy consumers predate Juju secrets and expect the
// password in plain text; current consumers receive an opaque secret
// reference instead.
package smtp

import (
	"strconv"

	"github.com/juju/collections/set"
)

const (
	// RelationName is the current-version provides endpoint.
	RelationName = "smtp"

	// LegacyRelationName is the backward compatible endpoint kept
	// for consumers that cannot read Juju secrets.
	LegacyRelationName = "smtp-legacy"
)

// AuthType is the SMTP authentication mechanism the relay expects.
type AuthType string

const (
	AuthNone  AuthType = "none"
	AuthPlain AuthType = "plain"
	AuthLogin AuthType = "login"
)

// TransportSecurity is the connection security for the SMTP relay.
type TransportSecurity string

const (
	TransportNone     TransportSecurity = "none"
	TransportStartTLS TransportSecurity = "starttls"
	TransportTLS      TransportSecurity = "tls"
)

var (
	validAuthTypes = set.NewStrings(
		string(AuthNone), string(AuthPlain), string(AuthLogin))
	validTransportSecurity = set.NewStrings(
		string(TransportNone), string(TransportStartTLS), string(TransportTLS))
)

// ValidAuthType reports whether value is a member of the closed
// auth_type enumeration.
func ValidAuthType(value AuthType) bool {
	return validAuthTypes.Contains(string(value))
}

// ValidTransportSecurity reports whether value is a member of the
// closed transport_security enumeration.
func ValidTransportSecurity(value TransportSecurity) bool {
	return validTransportSecurity.Contains(string(value))
}

// ValidAuthTypeNames returns the allowed auth_type values in sorted
// order, for error messages.
func ValidAuthTypeNames() []string {
	return validAuthTypes.SortedValues()
}

// ValidTransportSecurityNames returns the allowed transport_security
// values in sorted order, for error messages.
func ValidTransportSecurityNames() []string {
	return validTransportSecurity.SortedValues()
}

// RelationData holds the SMTP details exposed over a relation.
// Password and PasswordID are mutually exclusive: legacy payloads
// carry Password, current payloads carry PasswordID.
type RelationData struct {
	Host              string
	Port              int
	User              string
	Password          string
	PasswordID        string
	AuthType          AuthType
	TransportSecurity TransportSecurity
	Domain            string
}

// Databag returns the relation settings to write into the
// application databag. Relation data values are strings; unset
// optional fields are omitted.
func (d RelationData) Databag() map[string]string {
	settings := map[string]string{
		"host":               d.Host,
		"port":               strconv.Itoa(d.Port),
		"auth_type":          string(d.AuthType),
		"transport_security": string(d.TransportSecurity),
	}
	if d.User != "" {
		settings["user"] = d.User
	}
	if d.Password != "" {
		settings["password"] = d.Password
	}
	if d.PasswordID != "" {
		settings["password_id"] = d.PasswordID
	}
	if d.Domain != "" {
		settings["domain"] = d.Domain
	}
	return settings
}
