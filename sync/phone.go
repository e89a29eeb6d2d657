package sync

import (
	"strconv"
	"strings"

	"github.com/biter777/countries"
	"github.com/ttacon/libphonenumber"
)

// PhoneStrategy names one of the two supported phone canonicalization policies.
// The two strategies produce different keys, so records matched under one
// strategy will not match under the other. Which one is in use must stay
// consistent with the strategy that was active when the destination records
// were created.
type PhoneStrategy string

const (
	// PhoneStrategyE164 produces "+<country code><DDD><subscriber>" and
	// preserves the ninth (mobile) digit.
	PhoneStrategyE164 PhoneStrategy = "e164"
	// PhoneStrategyDigits produces a bare digit string and folds
	// 11-digit mobile numbers to 10 digits by dropping the leading "9".
	PhoneStrategyDigits PhoneStrategy = "digits"
)

// PhoneNormalizer canonicalizes free-form phone strings into stable
// comparison keys. Empty input always yields an empty string, which is
// never a valid match key.
type PhoneNormalizer struct {
	Strategy    PhoneStrategy
	CallingCode string
	callingCode int
}

// NewPhoneNormalizer builds a normalizer for the given strategy and country.
// The country calling code is resolved by name (e.g. "Brazil" -> "55");
// unknown countries fall back to Brazil.
func NewPhoneNormalizer(strategy PhoneStrategy, country string) PhoneNormalizer {
	code := countries.Brazil
	if country != "" {
		if c := countries.ByName(country); c != countries.Unknown {
			code = c
		}
	}
	callCode := 55
	if codes := code.CallCodes(); len(codes) > 0 {
		callCode = int(codes[0])
	}
	return PhoneNormalizer{
		Strategy:    strategy,
		CallingCode: strconv.Itoa(callCode),
		callingCode: callCode,
	}
}

// Normalize canonicalizes raw according to the configured strategy.
func (n PhoneNormalizer) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if n.Strategy == PhoneStrategyDigits {
		return n.normalizeDigits(raw)
	}
	return n.normalizeE164(raw)
}

func (n PhoneNormalizer) normalizeE164(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	// "00" international dialing prefix
	digits = strings.TrimPrefix(digits, "00")
	core := digits
	if strings.HasPrefix(digits, n.CallingCode) {
		core = digits[len(n.CallingCode):]
	}
	// 10 and 11 digit cores are plain national numbers; anything else is
	// passed through best effort in the same shape
	return "+" + n.CallingCode + core
}

func (n PhoneNormalizer) normalizeDigits(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	digits = strings.TrimPrefix(digits, "0")
	// only treat a leading country code as such when the number is longer
	// than a national significant number, otherwise "55" is a valid DDD
	if strings.HasPrefix(digits, n.CallingCode) && len(digits) > 11 {
		digits = digits[len(n.CallingCode):]
	}
	if len(digits) == 11 {
		// DDD + 9-prefixed mobile, fold to the fixed 10-digit form
		return digits[:2] + digits[3:]
	}
	return digits
}

// Plausible reports whether a normalized number parses as a valid number
// for the configured country. Callers use this for warnings only, the
// normalized key stays authoritative either way.
func (n PhoneNormalizer) Plausible(normalized string) bool {
	if normalized == "" {
		return false
	}
	region := libphonenumber.GetRegionCodeForCountryCode(n.callingCode)
	num, err := libphonenumber.Parse(normalized, region)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
