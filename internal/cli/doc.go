// Package cli provides the Messagely operator console.
//
// It opens the same PostgreSQL directory the server uses and drives it from
// an interactive REPL: register accounts, check credentials, list users and
// inspect a user's sent and received messages. Directory counters live in
// this process and are printed by the stats command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
