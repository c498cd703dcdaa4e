package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

const base64Prefix = "base64-"

// maxCookieChunks bounds how many ".N" chunks are read for one session.
const maxCookieChunks = 16

// SessionCookies returns the provider session cookies named name, either the single
// cookie itself or its ".0", ".1", ... chunks in order.
func SessionCookies(cookies []*http.Cookie, name string) []*http.Cookie {
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c
	}

	if c, ok := byName[name]; ok && c.Value != "" {
		return []*http.Cookie{c}
	}

	var chunks []*http.Cookie
	for i := 0; i < maxCookieChunks; i++ {
		c, ok := byName[name+"."+strconv.Itoa(i)]
		if !ok {
			break
		}
		chunks = append(chunks, c)
	}
	return chunks
}

// ReadSessionToken extracts the access token from the provider session cookie.
// The value may be URL-encoded, may carry a "base64-" prefix, and holds either a
// session object with an access_token field or an array whose first item is the token.
func ReadSessionToken(cookies []*http.Cookie, name string) (string, error) {
	parts := SessionCookies(cookies, name)
	if len(parts) == 0 {
		return "", identityDomain.ErrNoSession
	}

	var sb strings.Builder
	for _, c := range parts {
		sb.WriteString(c.Value)
	}

	raw := sb.String()
	if strings.Contains(raw, "%") {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
	}

	if strings.HasPrefix(raw, base64Prefix) {
		decoded, err := decodeBase64(strings.TrimPrefix(raw, base64Prefix))
		if err != nil {
			return "", fmt.Errorf("%w: malformed session cookie", identityDomain.ErrNoSession)
		}
		raw = string(decoded)
	}

	token := accessTokenFrom([]byte(raw))
	if token == "" {
		return "", fmt.Errorf("%w: session cookie has no access token", identityDomain.ErrNoSession)
	}
	return token, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func accessTokenFrom(raw []byte) string {
	var session struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &session); err == nil {
		return session.AccessToken
	}

	var tuple []any
	if err := json.Unmarshal(raw, &tuple); err == nil && len(tuple) > 0 {
		token, _ := tuple[0].(string)
		return token
	}
	return ""
}
