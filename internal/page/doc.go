// Package page rewrites the HTML shell page emitted by emcc.
//
// The emscripten shell template has a fixed shape: a head with its own title
// and styles, then a body holding a status div, a progress bar, the canvas, an
// output textarea and an attribution link. The Transformer applies one of two
// edit sets to that shape:
//
//   - ModeFullHead replaces the whole head (title, metas, a style block with the
//     configured background color), hides the first div and textarea and removes
//     the first link.
//   - ModeMinimal only sets the title text and the body background color.
//
// Lookups are explicit: an element that is not present yields a
// *MissingElementError, which is either recorded as skipped (SkipMissing) or
// returned as an artifact error (FailOnMissing).
package page
