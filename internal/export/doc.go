// Package export renders a Progol ticket (a Sheet) as text, JSON, an
// iCalendar entry for the draw, or a PNG image.
package export
