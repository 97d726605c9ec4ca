// Package cli wires configuration, storage backends and hosts together for
// the abacus command.
package cli
