package maven

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two maven version strings: -1, 0, or 1.
//
// Strict semver versions compare by semver rules. Everything else falls
// back to segment-wise comparison: versions split on '.', '-', and '_',
// numeric segments compare numerically, qualifier segments compare by the
// conventional ordering (alpha < beta < milestone < rc < snapshot <
// release < sp), and a missing segment counts as a release. Unknown
// qualifiers sort after releases, lexically.
func CompareVersions(a, b string) int {
	if va, err := semver.StrictNewVersion(a); err == nil {
		if vb, err := semver.StrictNewVersion(b); err == nil {
			return va.Compare(vb)
		}
	}

	as, bs := segments(a), segments(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		cmp := compareSegment(segmentAt(as, i), segmentAt(bs, i))
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

// segments splits on separators and on letter/digit transitions, so
// "1.0-rc1" becomes ["1", "0", "rc", "1"].
func segments(v string) []string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(v)), func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
	var out []string
	for _, f := range fields {
		start := 0
		for i := 1; i < len(f); i++ {
			if isDigit(f[i]) != isDigit(f[i-1]) {
				out = append(out, f[start:i])
				start = i
			}
		}
		out = append(out, f[start:])
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// segmentAt pads with the empty segment, which ranks as a release: this
// makes "1.0" < "1.0.1" and "1.0" > "1.0-rc1".
func segmentAt(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return ""
}

// qualifier ranks; the empty string is a release.
var qualifierRank = map[string]int{
	"alpha":     1,
	"a":         1,
	"beta":      2,
	"b":         2,
	"milestone": 3,
	"m":         3,
	"rc":        4,
	"cr":        4,
	"snapshot":  5,
	"":          6,
	"final":     6,
	"ga":        6,
	"release":   6,
	"sp":        7,
}

func compareSegment(a, b string) int {
	an, aNum := parseNum(a)
	bn, bNum := parseNum(b)

	// Against a number, a missing segment counts as zero ("1.0" == "1.0.0");
	// against a qualifier it keeps its release rank ("1.0" > "1.0-rc").
	if a == "" && bNum {
		aNum, an = true, 0
	}
	if b == "" && aNum {
		bNum, bn = true, 0
	}

	switch {
	case aNum && bNum:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	case aNum:
		// Numbers sort above any qualifier: "1.0.1" > "1.0-rc".
		return 1
	case bNum:
		return -1
	}

	ar, aKnown := qualifierRank[a]
	br, bKnown := qualifierRank[b]
	switch {
	case aKnown && bKnown:
		switch {
		case ar < br:
			return -1
		case ar > br:
			return 1
		default:
			return 0
		}
	case aKnown:
		return -1
	case bKnown:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func parseNum(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
