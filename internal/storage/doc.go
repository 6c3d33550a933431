// Package storage keeps saved Progol tickets.
//
// Two backends implement Store: FileStore writes a JSON file in the data
// directory, and PostgresStore keeps tickets in a JSONB column. Open picks
// Postgres when a database URL is configured and reachable.
package storage
