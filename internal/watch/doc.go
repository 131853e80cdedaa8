// Package watch rebuilds the game whenever a file in the input directory changes.
//
// Events are debounced so an editor saving several files produces one
// rebuild, and at most one build runs at a time. Changes arriving during a
// build schedule exactly one follow-up build.
package watch
