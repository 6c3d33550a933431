// Package draw defines the value types exchanged between the Progol
// acquisition pipeline and its collaborators.
//
// MatchRecord and DrawInfo are plain values: callers receive copies and may
// keep or mutate them freely. The package also holds the calendar helpers the
// pipeline relies on (Spanish date parsing, next-Sunday computation) and the
// prediction types consumed by the export and storage layers.
package draw
