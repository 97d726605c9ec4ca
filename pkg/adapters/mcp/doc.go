// Package mcp exposes the calculator to Model Context Protocol clients:
// one-shot evaluation, persistent keypad sessions and the history resource.
package mcp
