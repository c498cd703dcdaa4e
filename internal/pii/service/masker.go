// Package service implements deterministic, non-reversible PII masking for list views.
package service

import (
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"

	piiDomain "github.com/healo/piiguard/internal/pii/domain"
)

// freeTextLimit is the number of runes of free text kept visible.
const freeTextLimit = 20

// truncationMarker is appended to truncated free text.
const truncationMarker = "..."

// Masker masks PII values. It needs no key material and never fails.
type Masker struct{}

// NewMasker creates a new Masker.
func NewMasker() *Masker {
	return &Masker{}
}

// Mask masks value according to kind. Every rule is idempotent:
// Mask(Mask(v, k), k) == Mask(v, k).
func (m *Masker) Mask(value string, kind piiDomain.Kind) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return piiDomain.Sentinel
	}

	switch kind {
	case piiDomain.KindEmail:
		return maskEmail(value)
	case piiDomain.KindName:
		return maskName(value)
	case piiDomain.KindPhone:
		return maskPhone(value)
	case piiDomain.KindFreeText:
		return maskFreeText(value)
	default:
		return piiDomain.Sentinel
	}
}

// MaskDocument returns a copy of doc with every registered string field masked.
// Registered fields holding non-string values are replaced with the sentinel.
func (m *Masker) MaskDocument(doc map[string]any, registry *piiDomain.Registry) map[string]any {
	if doc == nil {
		return nil
	}

	out := maps.Clone(doc)
	for _, field := range registry.Fields() {
		value, present := out[field.Name]
		if !present || value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			out[field.Name] = piiDomain.Sentinel
			continue
		}
		out[field.Name] = m.Mask(s, field.Kind)
	}
	return out
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 {
		return piiDomain.Sentinel
	}

	local, domain := value[:at], value[at+1:]
	first, _ := utf8.DecodeRuneInString(local)
	if first == '*' {
		return piiDomain.Sentinel
	}
	return string(first) + "***@" + domain
}

// maskName keeps the first character. Single-character names are already minimal.
func maskName(value string) string {
	if value == piiDomain.Sentinel {
		return value
	}
	if utf8.RuneCountInString(value) == 1 {
		return value
	}

	first, _ := utf8.DecodeRuneInString(value)
	return string(first) + "***"
}

// maskPhone keeps the last four digits of the national number and a leading
// "+CC" when the number starts with one to three digits followed by a separator.
func maskPhone(value string) string {
	prefix := ""
	national := value

	if strings.HasPrefix(value, "+") {
		rest := value[1:]
		end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
		if end >= 1 && end <= 3 {
			prefix = "+" + rest[:end] + " "
			national = rest[end:]
		}
	}

	digits := make([]rune, 0, len(national))
	for _, r := range national {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return piiDomain.Sentinel
	}

	return prefix + "***" + string(digits[len(digits)-4:])
}

// maskFreeText keeps the first freeTextLimit runes and marks the truncation.
func maskFreeText(value string) string {
	runes := []rune(value)
	if len(runes) <= freeTextLimit {
		return value
	}
	return string(runes[:freeTextLimit]) + truncationMarker
}
