// Package state is the device-local persistence layer.
//
// It holds:
//   - the notified task set (ordered ids already surfaced as notifications)
//   - small key/value records such as the last badge the daemon set
//
// Everything lives in one SQLite file under the user state dir.
package state
