// Package toolchain builds and runs the emcc command line that compiles a
// raylib program into game.html, game.js and game.wasm.
//
// Commands are kept as discrete argument tokens and executed without a shell,
// so paths containing spaces or quotes need no escaping.
package toolchain
