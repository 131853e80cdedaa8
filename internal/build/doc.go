// Package build provides the canonical build pipeline for raywasm.
//
// A build runs three stages in order:
//
//	validate  -> resolve the page mode and check that main.c exists
//	compile   -> run emcc (skipped with --nobuild)
//	transform -> rewrite game.html (skipped with --noclean)
//
// Validation never touches the output directory, so a bad invocation leaves
// no trace on disk. The CLI, the watch loop and tests all go through
// BuildService.
package build
