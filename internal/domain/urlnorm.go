package domain

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters that carry campaign or click
// attribution and never affect which page a URL points to.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"twclid":       {},
	"igshid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref_src":      {},
	"vero_id":      {},
	"yclid":        {},
	"_hsenc":       {},
	"_hsmi":        {},
}

// NormalizeURL canonicalizes a URL for identity comparison: the fragment is
// dropped, tracking parameters are stripped (the built-in set plus any extra
// names supplied by the caller), and scheme/host are lowercased. Two URLs
// refer to the same item iff their normalized forms are byte-equal.
//
// Unparseable input is returned unchanged. This never fails.
func NormalizeURL(raw string, extra ...string) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			if isTrackingParam(name, extra) {
				q.Del(name)
			}
		}
		// Values.Encode sorts keys, which doubles as a canonical ordering.
		u.RawQuery = q.Encode()
	}

	return u.String()
}

func isTrackingParam(name string, extra []string) bool {
	lower := strings.ToLower(name)
	if _, ok := trackingParams[lower]; ok {
		return true
	}
	for _, e := range extra {
		if lower == strings.ToLower(e) {
			return true
		}
	}
	return false
}
