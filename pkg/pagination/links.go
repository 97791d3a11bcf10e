package pagination

import (
	"strconv"
	"strings"
)

// RawLinks is the wire form of Links: page numbers transmitted as numeric
// strings, with the empty string standing for an absent link.
type RawLinks struct {
	Current string  `json:"current"`
	Next    *string `json:"next"`
	Last    *string `json:"last"`
}

// ParseLinks coerces RawLinks into Links. Values that are not positive
// integers are treated as absent; an absent current page becomes 0.
func ParseLinks(raw RawLinks) Links {
	l := Links{}
	if n, ok := parsePage(raw.Current); ok {
		l.Current = n
	}
	if raw.Next != nil {
		if n, ok := parsePage(*raw.Next); ok {
			l.Next = &n
		}
	}
	if raw.Last != nil {
		if n, ok := parsePage(*raw.Last); ok {
			l.Last = &n
		}
	}
	return l
}

// ParseLinkStrings is ParseLinks for callers holding plain strings, where ""
// means absent.
func ParseLinkStrings(current, next, last string) Links {
	return ParseLinks(RawLinks{Current: current, Next: optional(next), Last: optional(last)})
}

// Raw formats l back into its wire form.
func (l Links) Raw() RawLinks {
	raw := RawLinks{Current: strconv.Itoa(l.Current)}
	if l.Next != nil {
		s := strconv.Itoa(*l.Next)
		raw.Next = &s
	}
	if l.Last != nil {
		s := strconv.Itoa(*l.Last)
		raw.Last = &s
	}
	return raw
}

func parsePage(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Page returns a pointer to n, for building Links literals.
func Page(n int) *int { return &n }
