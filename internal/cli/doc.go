// Package cli implements the progol command-line interface.
//
// The Cobra-based CLI shows the current Progol matches and draw, fills in
// tickets (by hand or at random), exports them as text, JSON, iCalendar or
// PNG, keeps a history of saved tickets, publishes them, and runs the HTTP
// API. It coordinates the pipeline, storage, export and notifier packages.
package cli
