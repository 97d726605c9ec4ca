/*
Package session implements calculator session management.

A Manager loads a session's state from a ports.StateStore, replays key
presses through a fresh runtime engine and saves the result, holding a
per-session lock (and optionally a distributed one) for the whole cycle so
concurrent requests for the same session never interleave.
*/
package session
