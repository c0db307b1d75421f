/*
Package observability provides lifecycle hooks for monitoring Colloquy runs.

Metrics exports Prometheus counters and a run-duration histogram; LogHooks
writes every lifecycle event to a structured logger. Both return plain
domain.LifecycleHooks and can be chained with domain.ChainHooks.
*/
package observability
