// Package shell renders environment changes as shell statements.
// The venv binary cannot change its parent shell's environment, so
// activate/deactivate print export/unset statements (set -gx/set -e for
// Fish) that a hook function evaluates in the interactive shell.
package shell
