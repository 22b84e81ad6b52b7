// Package version carries build metadata stamped into the binaries.
//
// Version, Commit and BuildTime are overridden through ldflags by the
// release tooling; local builds fall back to the defaults declared here.
// AttachCobraVersionCommand wires a `version` subcommand into each CLI.
package version
