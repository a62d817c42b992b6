package changelog

import (
	"sort"
	"time"
)

// datedTag is a tag positioned at its effective timestamp.
type datedTag struct {
	name string
	at   time.Time
}

// tagDay is one calendar day and the tags whose effective date falls on it,
// ordered by effective timestamp.
type tagDay struct {
	day  time.Time
	tags []datedTag
}

// representative returns the latest tag of the day.
func (d tagDay) representative() string {
	return d.tags[len(d.tags)-1].name
}

// Assignment partitions entries into per-tag buckets and an unreleased bucket.
type Assignment struct {
	ByTag      map[string][]Entry
	Unreleased []Entry
}

// EffectiveDate returns the release publish date when known, else the tag
// creation timestamp.
func EffectiveDate(tag Tag, releases map[string]Release) time.Time {
	if rel, ok := releases[tag.Name]; ok && !rel.Published.IsZero() {
		return rel.Published
	}
	return tag.Timestamp
}

// SortNewestFirst returns a copy of tags ordered by effective date,
// descending. Ties keep their input order.
func SortNewestFirst(tags []Tag, releases map[string]Release) []Tag {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return EffectiveDate(sorted[i], releases).After(EffectiveDate(sorted[j], releases))
	})
	return sorted
}

// groupTagDays buckets tags by the calendar day of their effective date,
// returned in ascending day order.
func groupTagDays(tags []Tag, releases map[string]Release) []tagDay {
	byDay := make(map[string]*tagDay)
	for _, tag := range tags {
		at := EffectiveDate(tag, releases)
		day := Day(at)
		key := day.Format(DateLayout)
		group, ok := byDay[key]
		if !ok {
			group = &tagDay{day: day}
			byDay[key] = group
		}
		group.tags = append(group.tags, datedTag{name: tag.Name, at: at})
	}

	days := make([]tagDay, 0, len(byDay))
	for _, group := range byDay {
		sort.SliceStable(group.tags, func(i, j int) bool {
			return group.tags[i].at.Before(group.tags[j].at)
		})
		days = append(days, *group)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].day.Before(days[j].day)
	})
	return days
}

// Assign maps each entry to the earliest tag-day on or after its
// implementation date. Entries without a date, or dated after the latest
// tag-day, are unreleased.
func Assign(entries []Entry, tags []Tag, releases map[string]Release) Assignment {
	days := groupTagDays(tags, releases)
	result := Assignment{ByTag: make(map[string][]Entry)}

	var horizon time.Time
	if len(days) > 0 {
		horizon = days[len(days)-1].day
	}

	for _, entry := range entries {
		if !entry.HasDate() || horizon.IsZero() || Day(entry.Date).After(horizon) {
			result.Unreleased = append(result.Unreleased, entry)
			continue
		}

		tag, ok := selectTag(days, Day(entry.Date))
		if !ok {
			result.Unreleased = append(result.Unreleased, entry)
			continue
		}
		result.ByTag[tag] = append(result.ByTag[tag], entry)
	}

	return result
}

// selectTag returns the representative tag of the first day >= target.
func selectTag(days []tagDay, target time.Time) (string, bool) {
	i := sort.Search(len(days), func(i int) bool {
		return !days[i].day.Before(target)
	})
	if i == len(days) {
		return "", false
	}
	return days[i].representative(), true
}

// Horizon returns the latest effective tag-day, or the zero time when there
// are no tags.
func Horizon(tags []Tag, releases map[string]Release) time.Time {
	days := groupTagDays(tags, releases)
	if len(days) == 0 {
		return time.Time{}
	}
	return days[len(days)-1].day
}
