// Package resolver turns archive page candidates into documents.
//
// A candidate is an unresolved archive title. Many titles lead to summary
// pages rather than text: a collection index, a list of editions, a soft
// redirect or a table of contents in disguise. The resolver fetches the page
// and decides, in order:
//
//  1. Refuse to go deeper than MaxDepth.
//  2. Refuse titles the title validator rejects, before any network call.
//  3. Fetch the rendered body, outbound links and categories in one call.
//  4. With at least HubThreshold sub-page links ("Title/..."), treat the page
//     as a summary hub and follow one sub-page at random.
//  5. With a redirect or editions marker, follow a plausible link.
//  6. Score the plain text. A link_density or listy rejection with outbound
//     links left is a hub in disguise: follow one at random.
//  7. Otherwise extract author and genre and cache the document.
//
// Recursion is bounded, so a top-level resolution makes at most MaxDepth+1
// fetches. Failures are returned as errors and a nil document; they are
// expected and frequent, and callers simply try another candidate.
//
// Design decision: the cache and the random source are injected so that the
// resolver holds no global state and tests can drive it deterministically.
package resolver
