// Package scraper fetches the Lotería Nacional Progol page and extracts match
// and draw information from it.
//
// Extraction is layered. ExtractStructured reads the page markup with goquery
// (match blocks, tables, metadata elements). When the markup no longer
// carries what is needed, ExtractReadableText reduces the page to visible
// text and MatchPatterns recovers prize, draw date, round and match lines
// from that text with ordered regular expressions. Results of both stages
// are PartialResults that merge field by field.
package scraper
