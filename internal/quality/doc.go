// Package quality decides whether extracted plain text is literature or wiki
// plumbing.
//
// The decision is an ordered table of named rules. Each rule is a predicate
// over a precomputed Analysis plus the reason it rejects with; the first rule
// that matches wins and a text that passes every rule is accepted. Thresholds
// are data (see Thresholds) so they can be tuned from configuration against a
// real corpus without touching control flow.
//
// # Usage
//
//	scorer := quality.NewScorer()
//	verdict := scorer.Score(body, len(links), title)
//	if !verdict.Accepted {
//	    log.Debug("rejected", "reason", verdict.Reason)
//	}
package quality
