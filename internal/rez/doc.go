// Package rez drives the external environment resolver.
//
// Generator runs `<bin> env <packages...> -o <file>` and captures the
// resolved-context output as an opaque blob; Loader replays a stored blob
// with `<bin> env -i <file>` inside a platform terminal. Both route their
// blocking subprocess and file I/O through a bounded Pool so the rest of
// the service stays responsive while the resolver works.
package rez
