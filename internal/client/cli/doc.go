// Package cli provides the interactive medbook command-line client.
//
// It wires configuration, the local store, the backend client and the
// services, restores the previous session and runs a REPL. Typical flow:
// login (or register), look at the dashboard, record analyses, manage
// appointments, edit the profile and settings, export or import a backup.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp and runREPL for details.
package cli
