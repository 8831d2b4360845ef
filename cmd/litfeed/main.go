// Package main provides the entry point for the litfeed CLI.
//
// litfeed is an endless reading feed of public-domain literature. It draws
// candidates from a wiki-style literary archive and from poem, e-book and
// scanned-book databases, filters out summary and index pages, and prints
// each accepted work as a teaser that can be revealed further.
//
// Usage:
//
//	litfeed feed --lang fr
//	litfeed resolve "Le Corbeau et le Renard" --lang fr
//
// See --help for all available options.
package main

// main is the entry point for litfeed.
func main() {
	Execute()
}
