package domain

import (
	"net/netip"
	"strings"
	"unicode/utf8"
)

// UnknownIP is stored when the client address is missing or unparsable.
const UnknownIP = "unknown"

const (
	maxMetadataStringRunes = 200
	maxUserAgentRunes      = 512
)

// allowedMetadataKeys are the only metadata keys ever stored. None of them carry PII.
var allowedMetadataKeys = map[string]struct{}{
	"limit":         {},
	"offset":        {},
	"page":          {},
	"status":        {},
	"error":         {},
	"reason":        {},
	"path":          {},
	"method":        {},
	"request_id":    {},
	"api":           {},
	"count":         {},
	"document_type": {},
	"inquiry_id":    {},
	"auth_method":   {},
}

// SanitizeMetadata keeps allow-listed keys holding scalar values and truncates long strings.
// It returns nil when nothing survives.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	var out map[string]any
	for key, value := range metadata {
		if _, ok := allowedMetadataKeys[key]; !ok {
			continue
		}

		var clean any
		switch v := value.(type) {
		case string:
			clean = truncate(v, maxMetadataStringRunes)
		case bool, int, int32, int64, uint, uint32, uint64, float32, float64:
			clean = v
		default:
			continue
		}

		if out == nil {
			out = make(map[string]any)
		}
		out[key] = clean
	}
	return out
}

// MaskIP keeps the network part of an address: /24 for IPv4 and /48 for IPv6.
func MaskIP(raw string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return UnknownIP
	}
	addr = addr.Unmap().WithZone("")

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return UnknownIP
	}
	return prefix.String()
}

// SanitizeUserAgent replaces invalid UTF-8 and bounds the stored user agent length.
func SanitizeUserAgent(ua string) string {
	return truncate(strings.TrimSpace(strings.ToValidUTF8(ua, "\uFFFD")), maxUserAgentRunes)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
