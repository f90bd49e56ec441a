// Package git provides a wrapper around Git CLI commands used by gantry.
// It handles clone, checkout, recursive submodule updates, and the
// credential/identity setup needed for non-interactive authenticated
// access, without depending on other internal packages.
package git
