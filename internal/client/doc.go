// Package client talks to the task API and keeps the caller's session.
//
// Client is a thin typed wrapper over the REST routes. Session holds the
// token between runs (through a TokenStore), checks its expiry locally and
// confirms it with the server before reporting the user as signed in.
package client
