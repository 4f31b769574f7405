package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version, CommitSHA, and BuildDate are set via ldflags at build time.
// Example: go build -ldflags "-X .../version.Version=1.0.0 -X .../version.CommitSHA=abc1234 -X .../version.BuildDate=2026-10-19"
var (
	Version   = "0.3.0"
	CommitSHA = "dev"
	BuildDate = "unknown"
)

// generatorPrefix starts the stamp of every exported document.
const generatorPrefix = "mfront "

// Generator is the stamp written into exported documents, "mfront 0.3.0".
func Generator() string {
	return generatorPrefix + strings.TrimPrefix(Version, "v")
}

// Info returns the version shown by "mfront version": "0.3.0" for dev
// builds, "0.3.0 (abc1234, 2026-10-19)" for release builds.
func Info() string {
	v := strings.TrimPrefix(Version, "v")
	if CommitSHA == "dev" || CommitSHA == "" {
		return v
	}
	return fmt.Sprintf("%s (%s, %s)", v, CommitSHA, BuildDate)
}

// SemVer is a major.minor.patch version.
type SemVer struct {
	Major int
	Minor int
	Patch int
}

// Parse reads "0.3.0" or "v0.3.0". A pre-release suffix is ignored.
func Parse(s string) (SemVer, error) {
	s = strings.TrimPrefix(s, "v")
	s, _, _ = strings.Cut(s, "-")

	segments := strings.Split(s, ".")
	if len(segments) != 3 {
		return SemVer{}, fmt.Errorf("invalid version %q: expected major.minor.patch", s)
	}
	var parts [3]int
	for i, seg := range segments {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return SemVer{}, fmt.Errorf("invalid version %q: %q is not a number", s, seg)
		}
		parts[i] = n
	}
	return SemVer{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// ParseGenerator reads the version out of a document's generator stamp.
func ParseGenerator(stamp string) (SemVer, error) {
	v, ok := strings.CutPrefix(stamp, generatorPrefix)
	if !ok {
		return SemVer{}, fmt.Errorf("generator %q was not written by mfront", stamp)
	}
	return Parse(strings.TrimSpace(v))
}

// String returns the version as "major.minor.patch".
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 depending on whether v is less than, equal to,
// or greater than other.
func (v SemVer) Compare(other SemVer) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// WrittenByNewer reports whether a document stamped with generator comes
// from a newer mfront than this one, whose fields may then be ignored on
// reading. Stamps that cannot be read report false.
func WrittenByNewer(generator string) bool {
	doc, err := ParseGenerator(generator)
	if err != nil {
		return false
	}
	cur, err := Parse(Version)
	if err != nil {
		return false
	}
	return doc.Compare(cur) > 0
}
