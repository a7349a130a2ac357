package domain

// CategoryGroup is a derived, non-persisted view of the bookmarks sharing
// one category, in global order.
type CategoryGroup struct {
	Category  string     `json:"category"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// ReorderBookmarks returns a copy of list where bookmarks named in ids come
// first, in that sequence, followed by every other bookmark in its previous
// relative order. Order values are reassigned densely from 0.
//
// Unknown and repeated ids are ignored, so an empty ids only renumbers.
func ReorderBookmarks(list []Bookmark, ids []string) []Bookmark {
	current := make([]Bookmark, len(list))
	copy(current, list)
	SortCanonical(current)

	byID := make(map[string]int, len(current))
	for i, b := range current {
		byID[b.ID] = i
	}

	taken := make([]bool, len(current))
	out := make([]Bookmark, 0, len(current))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || taken[i] {
			continue
		}
		taken[i] = true
		out = append(out, current[i])
	}
	for i, b := range current {
		if !taken[i] {
			out = append(out, b)
		}
	}

	renumber(out)
	return out
}

// ReorderCategories returns a copy of list regrouped by category. Requested
// categories that exist come first in the given sequence, the remaining
// ones follow in first-seen order. Order inside each category is kept and
// order values are reassigned densely across the result.
func ReorderCategories(list []Bookmark, categories []string) []Bookmark {
	groups := GroupByCategory(list)

	index := make(map[string]int, len(groups))
	for i, g := range groups {
		index[g.Category] = i
	}

	used := make([]bool, len(groups))
	sequence := make([]int, 0, len(groups))
	for _, raw := range categories {
		i, ok := index[NormalizeCategory(raw)]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		sequence = append(sequence, i)
	}
	for i := range groups {
		if !used[i] {
			sequence = append(sequence, i)
		}
	}

	out := make([]Bookmark, 0, len(list))
	for _, i := range sequence {
		out = append(out, groups[i].Bookmarks...)
	}

	renumber(out)
	return out
}

// GroupByCategory partitions list by normalized category. Groups appear in
// the order their first bookmark appears in canonical order.
func GroupByCategory(list []Bookmark) []CategoryGroup {
	current := make([]Bookmark, len(list))
	copy(current, list)
	SortCanonical(current)

	groups := []CategoryGroup{}
	index := make(map[string]int)
	for _, b := range current {
		key := NormalizeCategory(b.Category)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CategoryGroup{Category: key})
		}
		groups[i].Bookmarks = append(groups[i].Bookmarks, b)
	}
	return groups
}

func renumber(list []Bookmark) {
	for i := range list {
		list[i].Order = i
	}
}
