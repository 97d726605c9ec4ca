/*
Package observability turns engine lifecycle hooks into logs and Prometheus
metrics.

Hosts build a domain.LifecycleHooks with Compose(LogHooks(logger),
metrics.Hooks()) and hand it to the engine; the HTTP server exposes the
registry on /metrics.
*/
package observability
