// Package subscription implements the newsletter intake pipeline.
//
// A request moves through Received, Validated, Persisted and EmailAttempted
// before the HTTP layer responds. Validation failures stop the pipeline with
// no side effects; storage failures stop it before any email is sent; email
// failures are logged and otherwise ignored.
//
// The service depends on the Repository interface defined here and on
// sending.Sender. It never imports net/http or database/sql directly.
package subscription
