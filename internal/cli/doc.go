// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. Each
// subcommand resolves an app.Config from the environment and its flags,
// builds an App and runs one operation on it.
package cli
