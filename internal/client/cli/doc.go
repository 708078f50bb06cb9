// Package cli provides the interactive DNA community command-line client.
//
// It wires configuration, the local session database, the API client and
// the session store into a REPL. On start the saved session is restored and
// verified in the background, and a connectivity watcher keeps the prompt
// status (online/offline) current.
//
// Key features:
//   - Register / Login / Logout through the auth modal controller
//   - Profile view and edit, token refresh
//   - Events, blog and project listings
//   - Newsletter subscription and the contact form
//   - Section tracking for a configured page layout
//   - Request counters of the API client
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
