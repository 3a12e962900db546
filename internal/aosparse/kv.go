// Package aosparse turns OmniSwitch CLI text into typed records. Every parser
// is a pure function: no I/O, no clock, no global state. Parsers never fail —
// unparseable input yields a record with only the fields that could be
// extracted. All parsers tolerate trailing spaces, trailing commas, and the
// layout differences between AOS6, AOS8 and OS6860 firmware lines.
package aosparse

import (
	"regexp"
	"strconv"
	"strings"
)

// kvColonRE matches the ubiquitous "Key: value," line form. AOS terminates
// many values with a comma.
var kvColonRE = regexp.MustCompile(`^\s*([A-Za-z0-9 &/_-]+?)\s*:\s*(.*?)\s*,?\s*$`)

var ipv4InTextRE = regexp.MustCompile(`\b(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\b`)

// kvMatch splits a "Key: value" line. The key is lowercased; the value is
// stripped of surrounding quotes.
func kvMatch(line string) (key, value string, ok bool) {
	m := kvColonRE.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(m[1]))
	value = strings.Trim(strings.TrimSpace(m[2]), `"`)
	return key, value, true
}

// cleanNull maps the CLI's "(null)" placeholder to an empty string.
func cleanNull(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "(null)") {
		return ""
	}
	return s
}

// firstIPv4 returns the first IPv4 address found in s, or "".
func firstIPv4(s string) string {
	if m := ipv4InTextRE.FindString(s); m != "" {
		return m
	}
	return ""
}

var ipv4ExactRE = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// isIPv4 reports whether s is exactly a dotted-quad address. Table parsers use
// it to tell data rows from column-header lines.
func isIPv4(s string) bool {
	return ipv4ExactRE.MatchString(s)
}

// atoi parses an integer, returning 0 for anything unparseable.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// atoi64 parses an int64, returning 0 for anything unparseable.
func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

// atofloat parses a float, returning 0 for anything unparseable.
func atofloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
