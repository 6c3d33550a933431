// Package pipeline resolves the current Progol ticket and draw.
//
// A Pipeline fetches the official page once per resolution and walks the
// extraction stages in order: structured markup, text patterns, and finally
// the synthetic ticket. ResolveMatches and ResolveDrawInfo never fail; the
// stage tags on Entry tell callers how much to trust the result.
//
// Each Pipeline owns its Cache. Give every session its own Pipeline.
package pipeline
