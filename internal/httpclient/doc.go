// Package httpclient provides the HTTP client shared by the archive client and
// the source adapters.
//
// Every request carries the configured User-Agent, is bounded by a maximum
// body size and honors the request context. An optional SOCKS5 proxy routes
// all traffic through a single dialer, which is useful behind restrictive
// networks or when archives rate-limit by address.
//
// Design decision: adapters receive a *Client rather than building their own
// http.Client so that timeout, proxy and politeness settings are configured
// in one place and tests can point every adapter at an httptest server.
package httpclient
