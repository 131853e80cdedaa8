// Package serve previews a built game over HTTP.
//
// Browsers refuse to instantiate WebAssembly from file:// URLs, so the output
// directory is served with the application/wasm content type and caching
// disabled, which lets a rebuild show up on the next reload.
package serve
