package changelog

import "strings"

// TagRouter decides which document a release tag belongs to. A tag is main
// when its name starts with Prefix and contains none of Markers; every other
// tag goes to the archive.
type TagRouter struct {
	Prefix  string
	Markers []string
}

// DefaultTagRouter routes v1.x releases to the main changelog and iOS builds
// to the archive.
func DefaultTagRouter() TagRouter {
	return TagRouter{Prefix: "v1.", Markers: []string{"-ios"}}
}

// IsMain reports whether name belongs in the main changelog.
func (r TagRouter) IsMain(name string) bool {
	if !strings.HasPrefix(name, r.Prefix) {
		return false
	}
	for _, m := range r.Markers {
		if m != "" && strings.Contains(name, m) {
			return false
		}
	}
	return true
}

// Partition splits tags into main and archive, keeping their order.
func (r TagRouter) Partition(tags []Tag) (main, archive []Tag) {
	for _, t := range tags {
		if r.IsMain(t.Name) {
			main = append(main, t)
		} else {
			archive = append(archive, t)
		}
	}
	return main, archive
}

// Latest returns the main tag with the newest timestamp.
func (r TagRouter) Latest(tags []Tag) (Tag, bool) {
	var latest Tag
	found := false
	for _, t := range tags {
		if !r.IsMain(t.Name) {
			continue
		}
		if !found || t.Timestamp.After(latest.Timestamp) {
			latest = t
			found = true
		}
	}
	return latest, found
}
