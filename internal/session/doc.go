// Package session holds the client's expiring credential and hands it to
// concurrent callers of privileged backend operations.
//
// A valid session is served from memory. An absent or expired one triggers a
// refresh against the backend session endpoint; concurrent callers arriving
// while that refresh is running join it instead of starting their own.
package session
