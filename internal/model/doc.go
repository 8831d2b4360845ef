// Package model defines the core data structures used throughout litfeed.
//
// This package contains the following main types:
//   - PageCandidate: An unresolved reference to an archive page
//   - Link: One outbound link of a fetched archive page
//   - Verdict: The quality scorer's accept/reject decision
//   - Document: An accepted literary text with author and genre metadata
//   - PoolItem: Either a candidate or a preloaded document waiting in the pool
//   - ShownSet: The session-scoped set of documents already presented
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The resolver, the source adapters, the pool, the feed
// scheduler and the render sinks all exchange these types.
package model
