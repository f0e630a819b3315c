// Package classify labels observed aircraft as military and/or foreign.
//
// Military classification needs only local feed data (callsign, ICAO hex,
// squawk) and is a pure function of the configured policy. The foreign check
// joins against registration data from OpenSky; without a registration
// record, foreign is reported as unknown rather than guessed.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/opensky"
)

// Policy holds the matching rules. These are configuration, not business
// logic: the default lists are illustrative and operators are expected to
// tune them for their airspace.
type Policy struct {
	// CallsignPatterns are case-insensitive regular expressions tested
	// against the callsign in order; first match wins.
	CallsignPatterns []string `json:"callsign_patterns"`

	// ICAOPrefixes mark military hex allocations (e.g., "AE" for US Navy).
	// Compared case-insensitively against the start of the hex code.
	ICAOPrefixes []string `json:"icao_prefixes"`

	// Squawks are Mode A codes treated as military/emergency traffic.
	Squawks []string `json:"squawks"`

	// HomeCountry is the registration country considered domestic
	// (e.g., "United States"). Anything else is foreign.
	HomeCountry string `json:"home_country"`
}

// Result is the classification of one aircraft for one poll cycle.
// It is derived state, recomputed every cycle and never stored.
type Result struct {
	// Hex is the aircraft's ICAO 24-bit address
	Hex string

	// Military is true if callsign, hex prefix, or squawk matched
	Military bool

	// Foreign is true if a registration record exists and its country
	// differs from the home country. False when no record is available;
	// see CountryKnown.
	Foreign bool

	// CountryKnown is true if a registration record was available
	CountryKnown bool

	// Country is the registration country, empty if unknown
	Country string
}

// Classifier applies a compiled Policy.
type Classifier struct {
	policy   Policy
	patterns []*regexp.Regexp
	prefixes []string
	squawks  map[string]bool
}

// NewClassifier compiles the policy's callsign patterns.
// Returns an error for any pattern that does not compile; a broken policy
// is a configuration fault and should fail at startup.
func NewClassifier(policy Policy) (*Classifier, error) {
	patterns := make([]*regexp.Regexp, 0, len(policy.CallsignPatterns))
	for _, p := range policy.CallsignPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid callsign pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	prefixes := make([]string, 0, len(policy.ICAOPrefixes))
	for _, p := range policy.ICAOPrefixes {
		prefixes = append(prefixes, strings.ToLower(p))
	}

	squawks := make(map[string]bool, len(policy.Squawks))
	for _, s := range policy.Squawks {
		squawks[s] = true
	}

	return &Classifier{
		policy:   policy,
		patterns: patterns,
		prefixes: prefixes,
		squawks:  squawks,
	}, nil
}

// Classify labels one aircraft. registration may be nil when the lookup was
// suppressed or the hex was not returned by the API; military classification
// is unaffected, and foreign is reported unknown.
func (c *Classifier) Classify(ac adsb.Aircraft, registration *opensky.Registration) Result {
	result := Result{
		Hex:      ac.Hex,
		Military: c.IsMilitary(ac),
	}

	if registration != nil {
		result.CountryKnown = true
		result.Country = registration.OriginCountry
		result.Foreign = registration.OriginCountry != "" &&
			registration.OriginCountry != c.policy.HomeCountry
	}

	return result
}

// IsMilitary reports whether the aircraft matches any military rule.
// Pure in (callsign, hex, squawk); no external data involved.
func (c *Classifier) IsMilitary(ac adsb.Aircraft) bool {
	if callsign := strings.TrimSpace(ac.Callsign); callsign != "" {
		for _, re := range c.patterns {
			if re.MatchString(callsign) {
				return true
			}
		}
	}

	hex := strings.ToLower(ac.Hex)
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(hex, prefix) {
			return true
		}
	}

	return ac.Squawk != "" && c.squawks[ac.Squawk]
}
