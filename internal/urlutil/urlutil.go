// Package urlutil holds the URL conventions of the content source:
// slug encoding, page URL construction, canonical keys for manifest
// lookups, and image proxy unwrapping.
package urlutil

import (
	"net/url"
	"strings"

	"github.com/caentzminger/grokipedia-go/internal/types"
)

// slugSafe are the bytes kept verbatim when percent-encoding a slug,
// in addition to ASCII letters and digits.
const slugSafe = "!$&'()*+,;=:@._~-"

// ResolveBase normalizes a base URL, trimming whitespace and any
// trailing slash.
func ResolveBase(baseURL string) (string, error) {
	normalized := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if normalized == "" {
		return "", types.ErrEmptyBase
	}
	return normalized, nil
}

// PageURLFromSlug builds the canonical page URL for a slug.
func PageURLFromSlug(slug, baseURL string) (string, error) {
	normalized := strings.TrimSpace(slug)
	if normalized == "" {
		return "", types.ErrEmptySlug
	}
	base, err := ResolveBase(baseURL)
	if err != nil {
		return "", err
	}
	return base + "/page/" + encodeSlug(normalized), nil
}

// SlugFromURL derives the slug from a page URL path.
func SlugFromURL(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	path := parsed.EscapedPath()
	if rest, ok := strings.CutPrefix(path, "/page/"); ok {
		return percentDecode(rest)
	}
	return percentDecode(strings.Trim(path, "/"))
}

// Canonicalize produces the canonical key form of a URL: lowercased
// scheme and host, percent-decoded path, query and fragment dropped.
// Encoding or case differences never cause two spellings of the same
// page to compare unequal.
func Canonicalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	scheme := strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Host)
	path := percentDecode(parsed.EscapedPath())
	return scheme + "://" + host + path
}

// Resolve resolves a possibly-relative URL against a base URL. An
// empty base returns the raw URL unchanged.
func Resolve(baseURL, rawURL string) string {
	if baseURL == "" {
		return rawURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return rawURL
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return base.ResolveReference(ref).String()
}

// NormalizeImageURL resolves an image source against the page base URL
// and unwraps the site's image proxy: a resolved path of /_next/image
// carrying a url query parameter yields that inner URL, itself
// re-resolved against the base.
func NormalizeImageURL(rawSrc, baseURL string) string {
	resolved := Resolve(baseURL, rawSrc)
	parsed, err := url.Parse(resolved)
	if err != nil {
		return resolved
	}
	if parsed.Path != "/_next/image" {
		return resolved
	}
	inner := parsed.Query().Get("url")
	if inner == "" {
		return resolved
	}
	return Resolve(baseURL, inner)
}

func encodeSlug(slug string) string {
	var b strings.Builder
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte(slugSafe, c) >= 0:
			b.WriteByte(c)
		default:
			const hex = "0123456789ABCDEF"
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

func percentDecode(value string) string {
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}
