// Package domain defines the core types of the subscription widget.
//
// Types in this package are plain value objects with no I/O, no HTTP concerns
// and no timers. They are the shared language between the form controller,
// the newsletter client and the HTTP/UI layers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No context.Context, no *http.Request in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
