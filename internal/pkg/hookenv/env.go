package hookenv

import (
	"os"
)

// Env is the part of the hook execution environment
// the charm cares about.
type Env struct {
	HookName     string // JUJU_HOOK_NAME
	UnitName     string // JUJU_UNIT_NAME
	CharmDir     string // CHARM_DIR
	RelationName string // JUJU_RELATION, empty outside relation hooks
	RelationID   string // JUJU_RELATION_ID
	RemoteUnit   string // JUJU_REMOTE_UNIT
}

// LoadEnv reads an Env using getenv, e.g. os.Getenv.
func LoadEnv(getenv func(string) string) Env {
	e := Env{
		HookName:     getenv("JUJU_HOOK_NAME"),
		UnitName:     getenv("JUJU_UNIT_NAME"),
		CharmDir:     getenv("CHARM_DIR"),
		RelationName: getenv("JUJU_RELATION"),
		RelationID:   getenv("JUJU_RELATION_ID"),
		RemoteUnit:   getenv("JUJU_REMOTE_UNIT"),
	}
	if e.CharmDir == "" {
		e.CharmDir = getenv("JUJU_CHARM_DIR")
	}
	return e
}

// OSEnv returns the Env of the current process.
func OSEnv() Env {
	return LoadEnv(os.Getenv)
}

// InHook returns true if the process was started by the Juju unit agent.
func (e Env) InHook() bool {
	return e.UnitName != ""
}

// InRelation returns true if the current hook is a relation hook.
func (e Env) InRelation() bool {
	return e.RelationID != ""
}
