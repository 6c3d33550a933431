// Package api serves the Progol pipeline and saved tickets over HTTP.
//
// Every browser session gets its own pipeline, identified by the
// progol_session cookie, so one visitor's refresh never replaces another
// visitor's cached draw.
package api
