/*
Package observability turns parser events into Prometheus metrics.

Metrics.Hooks returns a domain.ParseHooks value; Combine chains several hook
sets so metrics can sit next to caller-supplied hooks.
*/
package observability
