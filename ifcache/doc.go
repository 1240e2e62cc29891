// Package ifcache assembles and caches the list of virtual IPX interfaces
// exposed by the host: every enabled network adapter, fused with its stored
// configuration, ordered so the primary interface comes first. It is the
// component the rest of the product queries whenever it needs to know which
// interfaces exist right now.
//
// # Building
//
// [Builder] produces one snapshot per call to [Builder.Build]. A build
// enumerates adapters through an [adapters.Source], reads the primary
// designation once, then walks the adapters in enumeration order:
//
//   - Adapters whose stored configuration is disabled are dropped. An adapter
//     with no stored configuration is disabled (the [ifconfig.Store] default),
//     so only explicitly enabled adapters ever become interfaces.
//   - Every non-zero IPv4 binding becomes an [IPBinding] with its broadcast
//     address derived from the address and netmask. Unassigned (0.0.0.0)
//     addresses are skipped; an interface may end up with no bindings at all
//     and is still listed.
//   - The IPX network and node numbers come from the adapter's configuration.
//     A node number matching the placeholder that buggy Hamachi drivers
//     report for every adapter is corrected from the first bound IP address
//     (see [Builder.Build]).
//   - The interface whose hardware address matches the primary designation is
//     placed at the front of the list; all others keep enumeration order.
//
// A build is all-or-nothing. If enumeration or any configuration read fails,
// no partial list is returned: the error is marked with [ErrSource] or
// [ErrStore] so callers can tell which dependency broke via errors.Is.
//
// # Caching
//
// [Cache] owns one snapshot and refreshes it lazily. Every query
// ([Cache.Interfaces], [Cache.ByAddress], [Cache.ByIndex], [Cache.Count],
// [Cache.Fingerprint]) first rebuilds the snapshot if it is missing or
// older than the TTL ([DefaultTTL], 5 seconds, override with [WithTTL]).
// A snapshot exactly TTL old is still fresh; staleness is strict.
//
// Refresh failures are absorbed: the previous snapshot stays in service
// (stale beats empty) and the failure is logged, never returned. Once a
// snapshot exists, a failed refresh still counts as an attempt and the next
// one happens a full TTL later, so a broken enumeration path is retried at
// TTL cadence rather than hammered by every caller. A cache that has never
// been populated returns empty results, also without error, and keeps
// attempting a build on every query until one succeeds.
//
// # Copy Semantics
//
// Callers never see cache-internal storage. Every query deep-copies what it
// returns, so the result is the caller's to keep and mutate:
//
//	ifaces := c.Interfaces(ctx)
//	ifaces[0].Bindings = nil // does not affect the cache or other callers
//
// # Concurrency
//
// One mutex serializes every operation end-to-end: acquire, maybe rebuild,
// copy, release. N goroutines hitting a stale cache trigger exactly one
// rebuild, because whoever wins the lock refreshes and the rest re-check
// the timestamp it just wrote. There is no background goroutine; all work
// happens on caller goroutines.
//
// # Change Detection
//
// [Cache.Fingerprint] hashes the current snapshot (xxhash over its msgpack
// encoding). The value changes exactly when the interface list's content or
// order changes, which lets pollers detect change without diffing:
//
//	last := c.Fingerprint(ctx)
//	for range ticker.C {
//	    if fp := c.Fingerprint(ctx); fp != last {
//	        last = fp
//	        render(c.Interfaces(ctx))
//	    }
//	}
//
// [Cache.Invalidate] drops the snapshot so the next query rebuilds; call it
// after writing to the configuration store. [Cache.Close] retires the cache:
// later queries return empty results without touching the builder.
package ifcache
