// Package feed schedules what the reader sees next.
//
// A Scheduler pulls items from the candidate pool, resolves raw candidates
// into documents, skips anything already shown in the session and hands the
// accepted documents to a render.Sink. The number of live entries is capped;
// extending the feed in one direction evicts the oldest entries at the other
// end.
//
// Design decision: LoadMore is not re-entrant. A second call while one is
// running returns ErrBusy instead of queueing, because a reader scrolling
// faster than the network can answer should not stack up loads.
package feed
