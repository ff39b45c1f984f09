// Package interfaces defines the core types of the keeper service and the
// contracts between its components, without implementation details.
//
// # Keepers
//
//   - Keeper, Keepers, KeeperSnapshot: keeper records and one fetched set of them
//   - KeeperSource: produces snapshots from the upstream authority (keepers.Client)
//   - KeeperRegistry: the in-memory cache read by request handlers and
//     replaced by the refresher (registry.KeepersRegistry)
//
// # Identity
//
//   - Identity: the caller resolved from an API token
//   - IdentityResolver: token lookup, injected into auth.Gate so the real
//     forum lookup can replace the stub without touching the gate
//
// # Reports
//
//   - SeededRelease: one release a keeper reports as seeding
package interfaces
