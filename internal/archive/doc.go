// Package archive is the client for wiki-style document archives.
//
// It speaks the MediaWiki action API that public literary archives expose:
// action=parse returns a page's rendered HTML together with its outbound
// links and categories in a single call, list=search performs full-text
// search, list=categorymembers enumerates a category and list=random draws
// random pages.
//
// # Interfaces
//
// The resolver depends on the Fetcher interface and the archive-search source
// adapter depends on Searcher, so both can be replaced with in-memory fakes
// in tests. Client implements both.
//
// # Markup markers
//
// Page.Kind inspects the rendered HTML for redirect and "multiple editions"
// markers. These are markup conventions of the archive, so they live here
// rather than in the resolver.
//
// # Usage
//
//	hc, _ := httpclient.New()
//	c := archive.NewClient(hc, archive.WithEndpoint("https://{lang}.wikisource.org/w/api.php"))
//	page, err := c.FetchPage(ctx, "Le Corbeau et le Renard", "fr")
package archive
