// Package errors provides the classified error primitives used across raywasm.
//
// Every failure that reaches the CLI carries a category (what went wrong), a
// severity (how bad it is) and a small context map (which file, which flag).
// The CLI adapter turns the category into a process exit code so that shell
// scripts can tell a usage mistake from a broken toolchain.
//
//   - ErrorCategory: broad classification (validation, config, toolchain, artifact, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages
//
// Example usage:
//
//	err := errors.ValidationError("color must be 6 characters").
//		WithContext("color", value).
//		Build()
package errors
