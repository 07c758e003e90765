// Package cache implements the gateway's response cache with
// stale-while-revalidate semantics on top of the kv store.
//
// Entries for configured GET paths are written after a successful origin
// fetch and served on subsequent requests. An entry younger than its TTL
// window is fresh (X-Cache-Status: HIT); between TTL and the SWR window it is
// stale but still servable (X-Cache-Status: STALE); past the SWR window it is
// unusable and the request falls through to the origin. Store failures always
// degrade to cache misses, never to request failures.
package cache
