// Package frontier implements the crawl frontier: the set of URLs
// pending a visit and the set of URLs ever admitted, driving a
// breadth-first traversal of one site.
//
// # Invariants
//
//   - The seen set only grows. A normalized URL enters the pending
//     queue at most once across the frontier's lifetime, no matter how
//     many pages link to it.
//   - Offer and Take serialize under one mutex, so the seen-set
//     check-and-insert is atomic with respect to concurrent offers and
//     no two workers can dequeue the same task.
//   - The depth fence holds at admission: a task exactly at the depth
//     limit is accepted, one past it is rejected.
//
// Design decision: The frontier is policy-complete (normalization,
// scope, patterns, and depth all live here), so the controller's only
// job is to offer every discovered link and let the frontier say no.
// Scattering admission rules across callers is how crawlers grow
// double-visit bugs.
package frontier
