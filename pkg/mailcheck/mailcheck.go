package mailcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"strings"
	"time"
)

const (
	maxAddressLen = 254
	maxLocalLen   = 64
)

// Result is the outcome of a validation attempt. Reason explains a
// rejection (or the "unverified" accept); Suggestion carries the corrected
// address when the domain matched the typo table.
type Result struct {
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
}

// MXResolver resolves mail-exchange records for a domain. Satisfied by
// *net.Resolver.
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Validator runs the staged address validation pipeline.
type Validator struct {
	resolver   MXResolver
	mxTimeout  time.Duration
	skipMX     bool
	disposable map[string]struct{}
}

// Option configures a Validator.
type Option func(*Validator)

// WithResolver overrides the DNS resolver used for the MX stage.
func WithResolver(r MXResolver) Option {
	return func(v *Validator) {
		if r != nil {
			v.resolver = r
		}
	}
}

// WithMXTimeout bounds the MX lookup. A lookup that exceeds the timeout is
// treated as resolver-unavailable, not as a rejection.
func WithMXTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.mxTimeout = d
		}
	}
}

// WithSkipMX disables the MX stage entirely, for offline environments.
func WithSkipMX() Option {
	return func(v *Validator) {
		v.skipMX = true
	}
}

// WithDisposableDomains adds domains to the disposable denylist.
func WithDisposableDomains(domains ...string) Option {
	return func(v *Validator) {
		for _, d := range domains {
			v.disposable[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
		}
	}
}

// New creates a Validator with the default denylists and the system DNS
// resolver.
func New(opts ...Option) *Validator {
	v := &Validator{
		resolver:   net.DefaultResolver,
		mxTimeout:  5 * time.Second,
		disposable: make(map[string]struct{}, len(defaultDisposableDomains)),
	}
	for d := range defaultDisposableDomains {
		v.disposable[d] = struct{}{}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the pipeline and returns on the first rejecting stage.
func (v *Validator) Validate(ctx context.Context, addr string) Result {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return reject("no email address provided")
	}

	if len(addr) > maxAddressLen {
		return reject("email address too long")
	}
	if strings.Count(addr, "@") != 1 {
		return reject("invalid email format: expected exactly one @")
	}

	at := strings.LastIndex(addr, "@")
	local, domain := addr[:at], strings.ToLower(addr[at+1:])
	if len(local) > maxLocalLen {
		return reject("email local part too long")
	}

	if parsed, err := mail.ParseAddress(addr); err != nil || parsed.Address != addr {
		return reject("invalid email format")
	}

	lowered := strings.ToLower(addr)
	for _, pattern := range fakePatterns {
		if pattern.MatchString(lowered) {
			return reject("email address not accepted")
		}
	}
	if hasRepeatedRun(strings.ToLower(local), 5) {
		return reject("email address not accepted")
	}

	if _, ok := v.disposable[domain]; ok {
		return reject("disposable email domains are not accepted")
	}

	if corrected, ok := typoDomains[domain]; ok {
		return Result{
			Valid:      false,
			Reason:     fmt.Sprintf("domain %q looks misspelled, did you mean %q?", domain, corrected),
			Suggestion: local + "@" + corrected,
		}
	}

	if v.skipMX {
		return Result{Valid: true, Reason: "email format valid"}
	}
	return v.checkMX(ctx, domain)
}

// checkMX rejects domains that provably cannot receive mail and degrades
// gracefully when the resolver itself is unavailable.
func (v *Validator) checkMX(ctx context.Context, domain string) Result {
	ctx, cancel := context.WithTimeout(ctx, v.mxTimeout)
	defer cancel()

	records, err := v.resolver.LookupMX(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return reject("email domain does not exist")
		}
		// Timeout or resolver failure: the address may well be fine.
		return Result{Valid: true, Reason: "email format valid, domain unverified"}
	}
	if len(records) == 0 {
		return reject("email domain cannot receive mail")
	}
	return Result{Valid: true, Reason: "email format valid"}
}

// hasRepeatedRun reports whether s contains n or more consecutive
// occurrences of the same letter or digit, a shape that shows up in
// keyboard-mashed addresses like "fatimaaaaaa".
func hasRepeatedRun(s string, n int) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] && (isAlnum(s[i])) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func reject(reason string) Result {
	return Result{Valid: false, Reason: reason}
}
