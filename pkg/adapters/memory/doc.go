// Package memory provides in-process adapters: displays, history, session
// storage and locking. They back tests, the REPL and single-node servers.
package memory
