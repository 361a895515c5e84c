// Package cmd holds command line flag sets and helpers shared by
// the elasticsearch-charm commands.
package cmd

import (
	"strings"

	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.
)

// EnvarPrefix is prepended to the env var of every flag.
// Juju runs hooks without arguments, so flags must be
// settable from the environment.
const EnvarPrefix = "ES_CHARM_"

// Flagger defines command line flags and args.
// Examples: kingpin.Application and kingping.CmdClause.
type Flagger interface {
	Flag(name string, help string) *kingpin.FlagClause
	Arg(name string, help string) *kingpin.ArgClause
}

var (
	_ Flagger = (*kingpin.Application)(nil)
	_ Flagger = (*kingpin.CmdClause)(nil)
)

// Flag defines a flag on app that can also be set by the
// env var returned by Envar.
func Flag(app Flagger, name, help string) *kingpin.FlagClause {
	return app.Flag(name, help).Envar(Envar(name))
}

// Envar returns the name of the env var for a flag.
//
// Example:
//
//   Envar("elasticsearch.url") == "ES_CHARM_ELASTICSEARCH_URL"
//
func Envar(flag string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return EnvarPrefix + strings.ToUpper(r.Replace(flag))
}
