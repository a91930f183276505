package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ErrNoCookies is returned when neither the env string nor the file yields a cookie.
var ErrNoCookies = errors.New("no cookies found")

// Cookie is one entry of a browser cookie export (the JSON file format).
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("invalid cookie file %s: %w", path, err)
	}
	return cookies, nil
}

// ParseCookieString parses a "name=value; name2=value2" header string.
// Values are kept verbatim, quotes included.
func ParseCookieString(raw string) []Cookie {
	var cookies []Cookie
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, Cookie{
			Name:   name,
			Value:  strings.TrimSpace(value),
			Domain: ".linkedin.com",
			Path:   "/",
		})
	}
	return cookies
}

// LoadLinkedInCookies prefers the env cookie string and falls back to the file.
func LoadLinkedInCookies(cookieString, path string) ([]Cookie, error) {
	if cookies := ParseCookieString(cookieString); len(cookies) > 0 {
		return cookies, nil
	}
	if path == "" {
		return nil, ErrNoCookies
	}

	cookies, err := LoadCookies(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoCookies, path)
		}
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoCookies, path)
	}
	return cookies, nil
}

// HeaderValue joins cookies into a Cookie request header.
func HeaderValue(cookies []Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// CSRFToken derives LinkedIn's csrf-token header from the JSESSIONID cookie.
func CSRFToken(cookies []Cookie) string {
	for _, c := range cookies {
		if c.Name == "JSESSIONID" {
			return strings.Trim(c.Value, `"`)
		}
	}
	return ""
}

func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	pwCookie := playwright.OptionalCookie{
		Name:  c.Name,
		Value: c.Value,
	}
	if c.Domain != "" {
		pwCookie.Domain = playwright.String(c.Domain)
	}
	if c.Path != "" {
		pwCookie.Path = playwright.String(c.Path)
	}

	if c.Expires > 0 {
		pwCookie.Expires = playwright.Float(c.Expires)
	}

	if c.HTTPOnly {
		pwCookie.HttpOnly = playwright.Bool(true)
	}

	if c.Secure {
		pwCookie.Secure = playwright.Bool(true)
	}

	switch strings.ToLower(c.SameSite) {
	case "lax":
		pwCookie.SameSite = playwright.SameSiteAttributeLax
	case "strict":
		pwCookie.SameSite = playwright.SameSiteAttributeStrict
	case "none", "no_restriction":
		pwCookie.SameSite = playwright.SameSiteAttributeNone
	}

	return pwCookie
}
