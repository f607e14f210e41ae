package results

import (
	"sort"
	"strings"

	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/types"
)

// BuildHierarchicalFacet assembles the scoped tree for one hierarchical
// facet from per-level path counts. levelCounts[d] holds the counts for the
// attribute at depth d, keyed by the full path ("Shoes", "Shoes > Sneakers").
// The tree is scoped to the given refinement path: only refined nodes get
// children, and when showParentLevel is off the siblings of refined
// ancestors are dropped. Each level is sorted per sortBy.
func BuildHierarchicalFacet(facet params.HierarchicalFacet, refinementPath string, levelCounts []map[string]int, sortBy []string) *FacetValue {
	separator := facet.Separator
	if separator == "" {
		separator = " > "
	}
	var breadcrumb []string
	if refinementPath != "" {
		breadcrumb = strings.Split(refinementPath, separator)
	}
	criteria := types.ParseSortBy(sortBy)

	rootDepth := 0
	if facet.RootPath != "" {
		rootDepth = len(strings.Split(facet.RootPath, separator))
	}

	var buildLevel func(depth int, parentPath string) []*FacetValue
	buildLevel = func(depth int, parentPath string) []*FacetValue {
		if depth >= len(levelCounts) {
			return nil
		}
		nodes := make([]*FacetValue, 0, len(levelCounts[depth]))
		for path, count := range levelCounts[depth] {
			name, ok := childName(path, parentPath, separator)
			if !ok {
				continue
			}
			node := &FacetValue{Name: name, Path: path, Count: count}
			if depth < len(breadcrumb) && name == breadcrumb[depth] && path == strings.Join(breadcrumb[:depth+1], separator) {
				node.IsRefined = true
				node.Data = buildLevel(depth+1, path)
			}
			nodes = append(nodes, node)
		}
		if depth < len(breadcrumb) && !facet.ShowParentLevel {
			refined := nodes[:0]
			for _, node := range nodes {
				if node.IsRefined {
					refined = append(refined, node)
				}
			}
			nodes = refined
		}
		sortFacetValues(nodes, criteria)
		return nodes
	}

	return &FacetValue{
		Name: facet.Name,
		Data: buildLevel(rootDepth, facet.RootPath),
	}
}

func childName(path, parentPath, separator string) (string, bool) {
	if parentPath == "" {
		if strings.Contains(path, separator) {
			return "", false
		}
		return path, true
	}
	prefix := parentPath + separator
	rest, found := strings.CutPrefix(path, prefix)
	if !found || rest == "" || strings.Contains(rest, separator) {
		return "", false
	}
	return rest, true
}

func sortFacetValues(values []*FacetValue, criteria []types.SortCriteria) {
	if len(criteria) == 0 {
		return
	}
	sort.SliceStable(values, func(i, j int) bool {
		for _, c := range criteria {
			var cmp int
			switch c.Field {
			case "name", "path":
				cmp = strings.Compare(values[i].Name, values[j].Name)
			case "count":
				cmp = values[i].Count - values[j].Count
			case "isRefined":
				cmp = boolToInt(values[i].IsRefined) - boolToInt(values[j].IsRefined)
			default:
				continue
			}
			if cmp == 0 {
				continue
			}
			if c.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
