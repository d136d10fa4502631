// Package doctor diagnoses a virtual environment root and the activation
// state of the current process.
package doctor
