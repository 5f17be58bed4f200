package registry

import (
	"net/url"
	"strings"
)

// validFilters is the closed set of query keys a listing may filter on. Any
// key outside this set (other than the recognized pagination keys) invalidates
// the whole query.
var validFilters = map[string]struct{}{
	"country":          {},
	"continent":        {},
	"name":             {},
	"established_year": {},
	"program":          {},
}

// UnknownFilterError reports the first query key outside the whitelist.
type UnknownFilterError struct {
	Key string
}

func (e *UnknownFilterError) Error() string {
	return "Unknown filter parameter: " + e.Key
}

// Filter is the normalized, whitelisted predicate for university listings.
// String fields are trimmed and lower-cased; country and continent match as
// case-insensitive equality, name and program as case-insensitive substring,
// and established_year passes through for an exact numeric match enforced by
// storage. The zero value matches everything.
type Filter struct {
	Country         string
	Continent       string
	Name            string
	EstablishedYear string
	Program         string
}

// IsZero reports whether no filter condition is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// BuildFilter validates a raw query string against the whitelist and returns
// the normalized predicate. The validation pass walks keys in wire order and
// fails on the first unknown key before any per-key normalization happens, so
// no partial predicate is ever produced. page and limit are recognized
// pagination keys and are excluded from filtering.
func BuildFilter(rawQuery string) (Filter, error) {
	pairs := parseQueryPairs(rawQuery)
	for _, p := range pairs {
		if _, ok := validFilters[p.key]; ok {
			continue
		}
		if p.key == "page" || p.key == "limit" {
			continue
		}
		return Filter{}, &UnknownFilterError{Key: p.key}
	}

	var f Filter
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		switch p.key {
		case "country":
			f.Country = normalize(p.value)
		case "continent":
			f.Continent = normalize(p.value)
		case "name":
			f.Name = normalize(p.value)
		case "program":
			f.Program = normalize(p.value)
		case "established_year":
			f.EstablishedYear = strings.TrimSpace(p.value)
		}
	}
	return f, nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

type queryPair struct {
	key   string
	value string
}

// parseQueryPairs splits a raw query string preserving wire order, which
// url.Values would discard. Undecodable segments keep their raw form so they
// still hit the whitelist check.
func parseQueryPairs(rawQuery string) []queryPair {
	if rawQuery == "" {
		return nil
	}
	segments := strings.Split(rawQuery, "&")
	pairs := make([]queryPair, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		pairs = append(pairs, queryPair{key: key, value: value})
	}
	return pairs
}
