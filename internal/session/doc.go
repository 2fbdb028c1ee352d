// Package session implements the inactivity-timeout monitor.
//
// Each authenticated session gets a Monitor driving a small state machine:
//
//	Active -> Warning -> Expired
//
// Activity reports re-stamp a shared last-activity timestamp; a periodic
// check compares elapsed time against the configured timeout. Five minutes
// before expiry the monitor enters Warning and counts down once per second;
// reaching zero (or the periodic check seeing the timeout exceeded) expires
// the session exactly once and invokes the logout callback.
//
// The activity timestamp lives in an ActivityStore shared by every client
// of the session. The store publishes change notifications, so activity
// recorded by one client clears the Warning state of all others within a
// poll interval. Two stores are provided: an in-process store for a single
// node and a Redis-backed store for multi-node deployments.
//
// Timers are driven through the Clock interface so tests can advance
// virtual time deterministically.
package session
