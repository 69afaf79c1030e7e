// Package mailcheck validates customer email addresses before any send is
// attempted.
//
// Validation is a short-circuiting staged pipeline: trimming and length
// caps, RFC 5322 grammar, a denylist of known-fake patterns, a denylist of
// disposable-email domains, a typo table for common provider misspellings
// (a match rejects with a suggested correction, it never auto-fixes), and
// finally MX record resolution. A domain with no MX records cannot receive
// mail and is rejected; an unavailable resolver degrades to accepting the
// address as "format valid, unverified" so a DNS outage never blocks
// outbound mail.
//
// Usage:
//
//	v := mailcheck.New()
//	res := v.Validate(ctx, "user@gmial.com")
//	// res.Valid == false, res.Suggestion == "user@gmail.com"
package mailcheck
