/*
Package http serves calculator sessions over HTTP.

The API is described by the embedded OpenAPI document (GET /openapi.yaml)
and every request is validated against it. Sessions can be driven with
batched key presses, watched as server-sent diffs, or used interactively
over a WebSocket keypad.
*/
package http
