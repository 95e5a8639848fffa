// Package delivery contains the email transports that implement
// sending.Sender.
//
// Transports are split into individual files:
//   - http.go:      generic JSON email API (POST {base}/email)
//   - ses.go:       AWS SES v2
//   - mailgun.go:   Mailgun Messages API
//   - sparkpost.go: SparkPost Transmissions API
//   - factory.go:   picks one of the above from configuration
//
// None of the transports retry. A failed send is reported as an error
// wrapping sending.ErrTransport and the caller decides what to do with it.
package delivery
