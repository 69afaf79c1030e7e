package mailcheck

import "regexp"

// fakePatterns reject addresses that match shapes seen only in made-up
// input: classic placeholder addresses and no-reply senders used as
// recipients. Repeated-character runs are handled separately because RE2
// has no backreferences.
var fakePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^.*test.*@test\..*$`),
	regexp.MustCompile(`^.*fake.*@fake\..*$`),
	regexp.MustCompile(`^test@test\.com$`),
	regexp.MustCompile(`^admin@example\.com$`),
	regexp.MustCompile(`^.*noreply.*@.*$`),
	regexp.MustCompile(`^.*no-reply.*@.*$`),
}

// defaultDisposableDomains is an exact-match denylist of throwaway-address
// providers. Extend via WithDisposableDomains.
var defaultDisposableDomains = map[string]struct{}{
	"tempmail.org":        {},
	"temp-mail.org":       {},
	"mailinator.com":      {},
	"guerrillamail.com":   {},
	"10minutemail.com":    {},
	"throwawaymail.com":   {},
	"yopmail.com":         {},
	"trashmail.com":       {},
	"getnada.com":         {},
	"sharklasers.com":     {},
	"dispostable.com":     {},
	"maildrop.cc":         {},
	"fakeinbox.com":       {},
	"mytemp.email":        {},
	"tempinbox.com":       {},
	"emailondeck.com":     {},
	"spamgourmet.com":     {},
	"mintemail.com":       {},
	"mailcatch.com":       {},
	"tempail.com":         {},
	"burnermail.io":       {},
	"temporary-mail.net":  {},
	"disposablemail.com":  {},
	"mail-temporaire.fr":  {},
	"jetable.org":         {},
	"throwawayemail.com":  {},
	"anonymbox.com":       {},
	"deadaddress.com":     {},
	"mailexpire.com":      {},
	"spambox.us":          {},
	"tempr.email":         {},
	"discard.email":       {},
	"mailnesia.com":       {},
	"mohmal.com":          {},
	"emailfake.com":       {},
	"crazymailing.com":    {},
	"tempmailaddress.com": {},
}

// typoDomains maps common provider misspellings to the intended domain.
// A hit is a rejection with a suggested correction, never an auto-fix:
// the customer typed the address, only the customer knows what they meant.
var typoDomains = map[string]string{
	"gmial.com":     "gmail.com",
	"gmail.co":      "gmail.com",
	"gmail.cm":      "gmail.com",
	"gmali.com":     "gmail.com",
	"gamil.com":     "gmail.com",
	"gmaill.com":    "gmail.com",
	"gnail.com":     "gmail.com",
	"gmai.com":      "gmail.com",
	"gmil.com":      "gmail.com",
	"googlemail.co": "googlemail.com",
	"hotmial.com":   "hotmail.com",
	"hotmal.com":    "hotmail.com",
	"hotmai.com":    "hotmail.com",
	"hotmail.co":    "hotmail.com",
	"hotmaill.com":  "hotmail.com",
	"outlok.com":    "outlook.com",
	"outloook.com":  "outlook.com",
	"outlook.co":    "outlook.com",
	"yaho.com":      "yahoo.com",
	"yahooo.com":    "yahoo.com",
	"yhoo.com":      "yahoo.com",
	"yahoo.co":      "yahoo.com",
	"icloud.co":     "icloud.com",
	"iclud.com":     "icloud.com",
	"protonmail.co": "protonmail.com",
	"live.co":       "live.com",
	"menara.am":     "menara.ma",
}
