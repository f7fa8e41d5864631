package selfupdate

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// DevVersion is the version string of builds without release ldflags.
const DevVersion = "(devel)"

var digitsRe = regexp.MustCompile(`\d+`)

// VersionTuple returns the integers appearing in v, or [0] if there are none.
func VersionTuple(v string) []int {
	var out []int
	for _, m := range digitsRe.FindAllString(v, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return []int{0}
	}
	return out
}

// Compare orders two versions. Valid semver ("v1.2.3") on both sides is
// compared with semver rules; anything else by VersionTuple, so "0.23 BETA"
// equals "0.23" and "0.23" is below "1.0".
func Compare(a, b string) int {
	sa, sb := canonical(a), canonical(b)
	if semver.IsValid(sa) && semver.IsValid(sb) {
		return semver.Compare(sa, sb)
	}
	return slices.CompareFunc(VersionTuple(a), VersionTuple(b), cmp.Compare[int])
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
