// Package app provides the application root.
//
// Wires the session coordinator, overlay stack and router together: path changes
// clear the overlay stack, long operations run behind a busy indicator, and a
// completed login returns the user to where the login redirect came from.
package app
