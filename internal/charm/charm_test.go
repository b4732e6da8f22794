// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/smtp-integrator-operator/internal/charm"
	"github.com/canonical/smtp-integrator-operator/internal/hook"
	"github.com/canonical/smtp-integrator-operator/internal/status"
)

type charmSuite struct {
	jujutesting.IsolationSuite

	stub    *jujutesting.Stub
	runtime *stubRuntime
}

var _ = gc.Suite(&charmSuite{})

func (s *charmSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.stub = &jujutesting.Stub{}
	s.runtime = newStubRuntime(s.stub)
	s.runtime.config = map[string]interface{}{
		"host":               "smtp.example.com",
		"port":               587,
		"user":               "u",
		"password":           "p",
		"auth_type":          "plain",
		"transport_security": "starttls",
	}
}

func (s *charmSuite) newCharm(c *gc.C) *charm.Charm {
	ch, err := charm.NewCharm(charm.Config{
		CharmConfig: s.runtime,
		Leadership:  s.runtime,
		Relations:   s.runtime,
		Secrets:     s.runtime,
		Status:      s.runtime,
		Logger:      loggo.GetLogger("test"),
	})
	c.Assert(err, jc.ErrorIsNil)
	return ch
}

func (s *charmSuite) TestValidateConfig(c *gc.C) {
	cfg := charm.Config{
		CharmConfig: s.runtime,
		Leadership:  s.runtime,
		Relations:   s.runtime,
		Secrets:     s.runtime,
		Status:      s.runtime,
		Logger:      loggo.GetLogger("test"),
	}
	c.Assert(cfg.Validate(), jc.ErrorIsNil)

	invalid := cfg
	invalid.Secrets = nil
	_, err := charm.NewCharm(invalid)
	c.Assert(err, gc.ErrorMatches, "nil Secrets not valid")

	invalid = cfg
	invalid.Logger = nil
	_, err = charm.NewCharm(invalid)
	c.Assert(err, gc.ErrorMatches, "nil Logger not valid")
}

func (s *charmSuite) TestConfigChangedLeader(c *gc.C) {
	s.runtime.leader = true
	s.runtime.addedID = "secret:9m4e2mr0ui3e8a215n4g"
	s.runtime.relationIDs["smtp"] = []string{"smtp:0"}
	s.runtime.relationIDs["smtp-legacy"] = []string{"smtp-legacy:1"}

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, jc.ErrorIsNil)

	// The secret is created before any relation is written, so every
	// payload in this hook sees the new reference.
	s.stub.CheckCallNames(c,
		"ConfigGet", "SecretIDs", "StatusSet", "SecretAdd", "IsLeader",
		"RelationIDs", "RelationSet", "RelationIDs", "RelationSet", "StatusSet")
	s.stub.CheckCall(c, 3, "SecretAdd",
		map[string]string{"password": "p"}, "smtp-password", "SMTP relay password")

	c.Assert(s.runtime.written["smtp:0"], jc.DeepEquals, map[string]string{
		"host":               "smtp.example.com",
		"port":               "587",
		"user":               "u",
		"password_id":        "secret:9m4e2mr0ui3e8a215n4g",
		"auth_type":          "plain",
		"transport_security": "starttls",
	})
	c.Assert(s.runtime.written["smtp-legacy:1"], jc.DeepEquals, map[string]string{
		"host":               "smtp.example.com",
		"port":               "587",
		"user":               "u",
		"password":           "p",
		"auth_type":          "plain",
		"transport_security": "starttls",
	})
	c.Assert(s.runtime.statuses, jc.DeepEquals, []statusCall{
		{status: status.Maintenance, message: "configuring charm"},
		{status: status.Active},
	})
}

func (s *charmSuite) TestConfigChangedPasswordAlreadyStored(c *gc.C) {
	s.runtime.leader = true
	s.runtime.secretIDs = []string{"secret:exists"}
	s.runtime.relationIDs["smtp"] = []string{"smtp:0"}

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c,
		"ConfigGet", "SecretIDs", "StatusSet", "IsLeader",
		"RelationIDs", "RelationSet", "RelationIDs", "StatusSet")
	c.Assert(s.runtime.written["smtp:0"]["password_id"], gc.Equals, "secret:exists")
}

func (s *charmSuite) TestConfigChangedNoPassword(c *gc.C) {
	s.runtime.leader = true
	delete(s.runtime.config, "password")
	delete(s.runtime.config, "user")
	s.runtime.relationIDs["smtp"] = []string{"smtp:0"}
	s.runtime.relationIDs["smtp-legacy"] = []string{"smtp-legacy:1"}

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, jc.ErrorIsNil)

	for _, call := range s.stub.Calls() {
		c.Check(call.FuncName, gc.Not(gc.Equals), "SecretAdd")
	}
	for _, settings := range s.runtime.written {
		_, found := settings["password"]
		c.Check(found, jc.IsFalse)
		_, found = settings["password_id"]
		c.Check(found, jc.IsFalse)
	}
}

func (s *charmSuite) TestConfigChangedNotLeaderWritesNoRelations(c *gc.C) {
	s.runtime.leader = false
	s.runtime.addedID = "secret:9m4e2mr0ui3e8a215n4g"
	s.runtime.relationIDs["smtp"] = []string{"smtp:0"}

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c,
		"ConfigGet", "SecretIDs", "StatusSet", "SecretAdd", "IsLeader", "StatusSet")
	c.Assert(s.runtime.written, gc.HasLen, 0)
}

func (s *charmSuite) TestInvalidConfigBlocks(c *gc.C) {
	s.runtime.leader = true
	s.runtime.config["port"] = 99999
	s.runtime.relationIDs["smtp"] = []string{"smtp:0"}

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c, "ConfigGet", "StatusSet")
	c.Assert(s.runtime.statuses, jc.DeepEquals, []statusCall{
		{status: status.Blocked, message: "port 99999 outside range [1, 65535] not valid"},
	})
	c.Assert(s.runtime.written, gc.HasLen, 0)
}

func (s *charmSuite) TestRelationCreatedLeaderGrantsSecret(c *gc.C) {
	s.runtime.leader = true
	s.runtime.secretIDs = []string{"secret:exists"}

	err := s.newCharm(c).RunHook(hook.Info{
		Kind:       hook.SMTPRelationCreated,
		RelationID: "smtp:3",
	})
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c,
		"ConfigGet", "SecretIDs", "IsLeader", "SecretGrant", "RelationSet")
	s.stub.CheckCall(c, 3, "SecretGrant", "secret:exists", "smtp:3")
	c.Assert(s.runtime.written["smtp:3"]["password_id"], gc.Equals, "secret:exists")
}

func (s *charmSuite) TestRelationCreatedLeaderNoSecret(c *gc.C) {
	s.runtime.leader = true
	delete(s.runtime.config, "password")

	err := s.newCharm(c).RunHook(hook.Info{
		Kind:       hook.SMTPRelationCreated,
		RelationID: "smtp:3",
	})
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c, "ConfigGet", "SecretIDs", "IsLeader", "RelationSet")
}

func (s *charmSuite) TestRelationCreatedNotLeader(c *gc.C) {
	s.runtime.leader = false
	s.runtime.secretIDs = []string{"secret:exists"}

	err := s.newCharm(c).RunHook(hook.Info{
		Kind:       hook.SMTPRelationCreated,
		RelationID: "smtp:3",
	})
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c, "ConfigGet", "SecretIDs", "IsLeader")
	c.Assert(s.runtime.written, gc.HasLen, 0)
}

func (s *charmSuite) TestLegacyRelationCreatedLeader(c *gc.C) {
	s.runtime.leader = true
	s.runtime.secretIDs = []string{"secret:exists"}

	err := s.newCharm(c).RunHook(hook.Info{
		Kind:       hook.SMTPLegacyRelationCreated,
		RelationID: "smtp-legacy:4",
	})
	c.Assert(err, jc.ErrorIsNil)

	// No secret grant on the legacy channel: the payload carries the
	// password in plain text.
	s.stub.CheckCallNames(c, "ConfigGet", "SecretIDs", "IsLeader", "RelationSet")
	settings := s.runtime.written["smtp-legacy:4"]
	c.Check(settings["password"], gc.Equals, "p")
	_, found := settings["password_id"]
	c.Check(found, jc.IsFalse)
}

func (s *charmSuite) TestLegacyRelationCreatedNotLeader(c *gc.C) {
	s.runtime.leader = false

	err := s.newCharm(c).RunHook(hook.Info{
		Kind:       hook.SMTPLegacyRelationCreated,
		RelationID: "smtp-legacy:4",
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(s.runtime.written, gc.HasLen, 0)
}

func (s *charmSuite) TestUnobservedHookIgnored(c *gc.C) {
	err := s.newCharm(c).RunHook(hook.Info{Kind: "install"})
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCallNames(c)
}

func (s *charmSuite) TestRelationHookRequiresRelationID(c *gc.C) {
	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.SMTPRelationCreated})
	c.Assert(err, jc.ErrorIs, errors.NotValid)
	s.stub.CheckCallNames(c)
}

func (s *charmSuite) TestSecretAddFailurePropagates(c *gc.C) {
	s.runtime.leader = true
	s.stub.SetErrors(nil, nil, nil, errors.New("kaboom"))

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, gc.ErrorMatches, "storing password as secret: kaboom")
	c.Assert(s.runtime.written, gc.HasLen, 0)
}

func (s *charmSuite) TestRelationSetFailurePropagates(c *gc.C) {
	s.runtime.leader = true
	s.runtime.secretIDs = []string{"secret:exists"}
	s.runtime.relationIDs["smtp"] = []string{"smtp:0"}
	s.stub.SetErrors(nil, nil, nil, nil, nil, errors.New("kaboom"))

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, gc.ErrorMatches, `updating relation "smtp:0": kaboom`)
}

func (s *charmSuite) TestConfigGetFailurePropagates(c *gc.C) {
	s.stub.SetErrors(errors.New("kaboom"))

	err := s.newCharm(c).RunHook(hook.Info{Kind: hook.ConfigChanged})
	c.Assert(err, gc.ErrorMatches, "reading charm config: kaboom")
}
