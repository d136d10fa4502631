// Package venv implements the virtual environment activation state machine.
// Activate snapshots PATH, PYTHONHOME and PS1 into _OLD_VIRTUAL_* backup keys
// before mutating them, and Deactivate restores exactly the backups it finds.
// All access to the environment goes through an envstore.Store, and every
// filesystem check runs before the first write.
package venv
