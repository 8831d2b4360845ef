// Package database provides SQLite-based storage for litfeed.
//
// The DB stores:
//   - Resolved documents, so a page accepted once is never fetched again
//   - The history of what each feed session showed
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets the history command read while a feed is writing
//
// Archive pages are treated as immutable, so cached documents are only
// removed by Prune.
package database
