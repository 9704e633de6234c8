// Package validator provides the issue model shared by every postmatter
// check.
//
// Single-file rules, collection-wide checks and the CLI all speak in terms of
// the same types:
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: Represents a single validation problem with field context.
//   - [Result]: Aggregates multiple issues and provides helper methods.
//   - [Reporter]: Writes a Result as colored text or JSON.
//
// # Basic Usage
//
//	result := &validator.Result{}
//	if title == "" {
//		result.AddError("title", "is required", title)
//	}
//
//	total := &validator.Result{}
//	total.Merge(result, map[string]string{validator.ContextFile: path})
//
//	if total.HasErrors() {
//		// handle validation failure
//	}
package validator
