// Package pool holds the shuffled queue of candidates the feed draws from.
//
// A Pool fans out to every configured source.Adapter, merges their batches,
// drops duplicates and shuffles the result. Items leave the pool through
// Take; when the pool runs low a refill is started in the background so the
// feed rarely waits on the network.
//
// Design decision: a Pool only deduplicates what it currently holds. What the
// reader has already seen is tracked by the feed's ShownSet, because an item
// taken from the pool may still be rejected by the resolver and a later
// fill must be free to offer a sibling of the same hub.
package pool
