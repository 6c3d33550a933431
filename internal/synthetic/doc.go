// Package synthetic builds the default Progol ticket used when nothing could
// be recovered from the official page.
package synthetic
