// Package mailer sends reservation lifecycle emails and classifies
// transport failures.
//
// EmailSender is the transport boundary: Postmark in production, DevSender
// for local development (emails land on disk). The Dispatcher sits above
// the transport; it renders a typed template for a message kind, embeds the
// tracking URL, calls the transport with a bounded timeout and folds any
// failure into a typed SendResult. Nothing escapes Dispatch as an error or
// panic - the caller always gets a classified result.
package mailer
