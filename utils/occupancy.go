package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// Occupancy is one parsed room configuration: how many adults and children
// it can hold.
type Occupancy struct {
	Adults   int
	Children int
}

// Catalog occupancy texts come from content staff in English or Vietnamese,
// e.g. "2 adults, 1 child", "3 người lớn và 2 trẻ em", "Sleeps 4 adults".
var (
	adultsRe   = regexp.MustCompile(`(\d+)\s*(?:adults?|ng[uư]ờ?i lớn)`)
	childrenRe = regexp.MustCompile(`(\d+)\s*(?:child(?:ren)?|kids?|tr[eẻ] em)`)
)

// ParseOccupancy extracts (adults, children) from a free-text descriptor.
// Malformed text yields zero capacity, never an error: a bad catalog entry
// degrades to "this option doesn't match".
func ParseOccupancy(text string) Occupancy {
	s := strings.ToLower(strings.TrimSpace(text))
	var occ Occupancy
	if m := adultsRe.FindStringSubmatch(s); m != nil {
		occ.Adults, _ = strconv.Atoi(m[1])
	}
	if m := childrenRe.FindStringSubmatch(s); m != nil {
		occ.Children, _ = strconv.Atoi(m[1])
	}
	return occ
}

// Fits reports whether this configuration satisfies the requested party.
// Either a strict match (enough adult and child capacity) or a flexible one
// (adult capacity alone absorbs the whole party) qualifies.
func (o Occupancy) Fits(adults, children int) bool {
	if o.Adults >= adults && o.Children >= children {
		return true
	}
	return o.Adults >= adults+children
}

// AnyFits reports whether any of the given descriptors matches the request.
func AnyFits(texts []string, adults, children int) bool {
	for _, t := range texts {
		if ParseOccupancy(t).Fits(adults, children) {
			return true
		}
	}
	return false
}
