// Package tasks contains the long-running background jobs of the service.
//
// KeepersRefresher keeps the in-memory keepers registry in sync with the
// upstream forum API. It is a single sequential loop: one refresh at start,
// then one refresh per tick. A refresh that outlives the interval delays the
// next tick instead of overlapping with it. Failed refreshes leave the
// registry untouched, so an upstream outage degrades to stale data rather
// than an empty registry.
package tasks
