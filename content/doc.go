// Package content stores the admin panel's business data: the calendar, menu,
// and OGP JSON documents the public sites render, plus a bounded set of
// uploaded images per document kind. Backed by a local bbolt database; the
// authentication core never depends on this package.
package content
