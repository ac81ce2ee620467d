package canonical

import (
	"sort"
	"strings"
	"time"
)

// TimeFormat is the layout of timestamp params carried by signed
// requests. The trailing Z is literal, times must be in UTC before
// formatting with it.
const TimeFormat = "2006-01-02T15:04:05Z"

// FormatTimestamp renders t in UTC as "YYYY-MM-DDTHH:MM:SSZ".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

const upperhex = "0123456789ABCDEF"

func needsEscape(b byte) bool {
	return !('A' <= b && b <= 'Z' ||
		'a' <= b && b <= 'z' ||
		'0' <= b && b <= '9' ||
		b == '-' || b == '.' || b == '_' || b == '~')
}

// Escape percent encodes every byte of s outside the RFC 3986 unreserved
// set. Spaces become %20 rather than +. Hex digits are uppercase and
// multi byte runes are encoded byte by byte.
func Escape(s string) string {
	escaped := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if needsEscape(b) {
			escaped = append(escaped, '%', upperhex[b>>4], upperhex[b&0xf])
		} else {
			escaped = append(escaped, b)
		}
	}
	return string(escaped)
}

// EncodeParams serializes params as escaped k=v pairs joined with "&".
// The pairs are ordered by sorting the joined pair strings, not the keys,
// so a key containing escapable bytes can sort differently than its raw
// form would.
func EncodeParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, Escape(k)+"="+Escape(v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// StringToSign assembles the canonical payload covered by a request
// signature: the uppercased method, the verbatim path and the serialized
// params, separated by newlines.
func StringToSign(method, path string, params map[string]string) string {
	return strings.ToUpper(method) + "\n" + path + "\n" + EncodeParams(params)
}
