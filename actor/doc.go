// Package actor loads the simulated users a flow runs as from CSV data
// files.
package actor
