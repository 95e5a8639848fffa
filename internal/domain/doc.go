// Package domain defines the core types for the newsletter subscription service.
//
// Types in this package are value objects with no database dependencies and
// no HTTP concerns. They are the shared language between handlers, services,
// and repositories.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Validated values (SubscriberName, SubscriberEmail) are only built by
//     their Parse functions; once one exists, callers may assume it is well-formed
//   - Constants and enums belong here
package domain
