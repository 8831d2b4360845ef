// Package render presents accepted documents to the reader.
//
// A Sink receives each document together with segmentation hints, shows its
// teaser and returns a Handle the feed later uses to evict the entry when
// the visible window exceeds its cap. Three sinks are provided: TextSink for
// terminals, JSONSink for newline-delimited JSON consumers and MarkdownSink
// for a document that can be saved and shared.
package render
