// Package envstore abstracts access to named environment variables.
// Production code uses OSStore, which reads and writes the real process
// environment so that child processes inherit every change. MapStore keeps
// variables in memory for tests and for rendering shell snippets.
package envstore
