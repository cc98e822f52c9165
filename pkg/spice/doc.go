// Package spice generates SPICE netlists from resolved schematics.
//
// The emitter walks the top-level group and every sub-circuit group that is
// actually instantiated, runs net extraction on each, and renders one
// element line per device using the per-type SPICE syntax. Library models
// can override the default syntax with reference and declaration templates,
// and free-form template code is parsed into the output circuit, falling
// back to verbatim inclusion when it does not parse.
//
// Emission is a pure pass: remote include directives found in template code
// are rewritten to local cache paths and returned as pending downloads,
// which a Fetcher resolves afterwards. Emission itself never touches the
// network.
package spice
