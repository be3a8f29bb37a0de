package resolver

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type semverTag struct {
	version *semver.Version
	name    string
}

// pickTagForVersion chooses the tag a version selector should install.
//
// Among tags that parse as semver (ignoring a leading v, excluding
// pre-releases): an exact match wins, otherwise the highest tag whose
// major (and minor, when given) components match. Repositories that do
// not tag semver fall back to an exact name match, then to the highest
// dotted extension of the requested prefix.
func pickTagForVersion(tags []string, v string) (string, bool) {
	tags = append([]string(nil), tags...)
	sort.Strings(tags)

	vTrim := strings.TrimPrefix(v, "v")
	parts := strings.Split(vTrim, ".")

	var semverTags []semverTag
	for _, t := range tags {
		name := strings.TrimSpace(t)
		ver, err := semver.StrictNewVersion(strings.TrimPrefix(name, "v"))
		if err != nil || ver.Prerelease() != "" {
			continue
		}
		semverTags = append(semverTags, semverTag{version: ver, name: name})
	}

	if len(semverTags) > 0 {
		if len(parts) == 3 && allDigits(parts) {
			if want, err := semver.StrictNewVersion(vTrim); err == nil {
				for _, st := range semverTags {
					if st.version.Equal(want) {
						return st.name, true
					}
				}
			}
		}

		if major, err := strconv.ParseUint(parts[0], 10, 64); err == nil {
			var minor uint64
			hasMinor := false
			if len(parts) > 1 {
				if m, err := strconv.ParseUint(parts[1], 10, 64); err == nil {
					minor = m
					hasMinor = true
				}
			}

			var candidates []semverTag
			for _, st := range semverTags {
				if st.version.Major() != major {
					continue
				}
				if hasMinor && st.version.Minor() != minor {
					continue
				}
				candidates = append(candidates, st)
			}
			if len(candidates) > 0 {
				sort.SliceStable(candidates, func(i, j int) bool {
					return candidates[i].version.LessThan(candidates[j].version)
				})
				return candidates[len(candidates)-1].name, true
			}
		}
	}

	if slices.Contains(tags, v) {
		return v, true
	}

	return pickDottedSuffixTag(tags, v)
}

// pickDottedSuffixTag handles non-semver schemes like "release.3": given
// v, choose the highest tag extending it numerically ("v.X.Y" or "vV.X.Y").
func pickDottedSuffixTag(tags []string, v string) (string, bool) {
	type candidate struct {
		nums []uint64
		name string
	}
	var candidates []candidate

	for _, t := range tags {
		var rest string
		switch {
		case strings.HasPrefix(t, v+"."):
			rest = strings.TrimPrefix(t, v+".")
		case strings.HasPrefix(t, "v"+v+"."):
			rest = strings.TrimPrefix(t, "v"+v+".")
		default:
			continue
		}
		segs := strings.Split(rest, ".")
		nums := make([]uint64, len(segs))
		for i, s := range segs {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				n = 0
			}
			nums[i] = n
		}
		candidates = append(candidates, candidate{nums: nums, name: t})
	}

	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return slices.Compare(candidates[i].nums, candidates[j].nums) < 0
	})
	return candidates[len(candidates)-1].name, true
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
