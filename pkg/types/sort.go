package types

import "strings"

type SortCriteria struct {
	Field      string
	Descending bool
}

// ParseSortBy turns entries like "name:asc" or "count:desc" into criteria.
// A missing direction means ascending.
func ParseSortBy(sortBy []string) []SortCriteria {
	ret := make([]SortCriteria, 0, len(sortBy))
	for _, s := range sortBy {
		field, dir, found := strings.Cut(s, ":")
		if field == "" {
			continue
		}
		ret = append(ret, SortCriteria{
			Field:      field,
			Descending: found && dir == "desc",
		})
	}
	return ret
}
