package main

import (
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/results"
)

type catalogItem struct {
	Id       uint32   `json:"id"`
	Name     string   `json:"name"`
	Rating   int      `json:"rating"`
	Category []string `json:"category"`
}

// catalogIndex is a small in-memory faceted index, one bitmap of item ids
// per facet value.
type catalogIndex struct {
	separator string
	all       *roaring.Bitmap
	ratings   map[string]*roaring.Bitmap
	levels    []map[string]*roaring.Bitmap
}

func newCatalogIndex(separator string) *catalogIndex {
	return &catalogIndex{
		separator: separator,
		all:       roaring.New(),
		ratings:   map[string]*roaring.Bitmap{},
	}
}

func (idx *catalogIndex) add(item catalogItem) {
	idx.all.Add(item.Id)
	addToBitmap(idx.ratings, strconv.Itoa(item.Rating), item.Id)
	for depth := range item.Category {
		for len(idx.levels) <= depth {
			idx.levels = append(idx.levels, map[string]*roaring.Bitmap{})
		}
		path := strings.Join(item.Category[:depth+1], idx.separator)
		addToBitmap(idx.levels[depth], path, item.Id)
	}
}

func addToBitmap(m map[string]*roaring.Bitmap, key string, id uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(id)
}

// Search applies the refinements held by the parameters and computes facet
// counts with self-exclusion: an attribute's own refinement never shrinks
// its own counts, so the other options stay selectable.
func (idx *catalogIndex) Search(state *params.SearchParameters, ratingAttribute string, sortBy []string) *results.Results {
	ratingFilter := idx.ratingFilter(state, ratingAttribute)
	categoryFilter, categoryName := idx.categoryFilter(state)

	matched := idx.all.Clone()
	if ratingFilter != nil {
		matched.And(ratingFilter)
	}
	if categoryFilter != nil {
		matched.And(categoryFilter)
	}

	// rating counts: everything but the rating refinement itself
	ratingBase := idx.all.Clone()
	if categoryFilter != nil {
		ratingBase.And(categoryFilter)
	}
	ratingCounts := make(map[string]int, len(idx.ratings))
	for value, bm := range idx.ratings {
		count := int(roaring.And(bm, ratingBase).GetCardinality())
		if count > 0 {
			ratingCounts[value] = count
		}
	}

	// category counts: everything but the category refinement itself
	categoryBase := idx.all.Clone()
	if ratingFilter != nil {
		categoryBase.And(ratingFilter)
	}
	levelCounts := make([]map[string]int, len(idx.levels))
	for depth, paths := range idx.levels {
		levelCounts[depth] = make(map[string]int, len(paths))
		for path, bm := range paths {
			count := int(roaring.And(bm, categoryBase).GetCardinality())
			if count > 0 {
				levelCounts[depth][path] = count
			}
		}
	}

	ret := &results.Results{
		NbHits: int(matched.GetCardinality()),
		Facets: map[string]map[string]int{
			ratingAttribute: ratingCounts,
		},
	}
	if categoryName != "" {
		facet, _ := state.GetHierarchicalFacet(categoryName)
		ret.HierarchicalFacets = map[string]*results.FacetValue{
			categoryName: results.BuildHierarchicalFacet(facet, state.GetHierarchicalRefinement(categoryName), levelCounts, sortBy),
		}
	}
	return ret
}

func (idx *catalogIndex) ratingFilter(state *params.SearchParameters, attribute string) *roaring.Bitmap {
	values := state.GetDisjunctiveRefinements(attribute)
	if len(values) == 0 {
		return nil
	}
	filter := roaring.New()
	for _, value := range values {
		if bm, ok := idx.ratings[value]; ok {
			filter.Or(bm)
		}
	}
	return filter
}

func (idx *catalogIndex) categoryFilter(state *params.SearchParameters) (*roaring.Bitmap, string) {
	for name := range state.HierarchicalFacets {
		path := state.GetHierarchicalRefinement(name)
		if path == "" {
			return nil, name
		}
		depth := len(strings.Split(path, idx.separator)) - 1
		if depth < 0 || depth >= len(idx.levels) {
			return roaring.New(), name
		}
		if bm, ok := idx.levels[depth][path]; ok {
			return bm, name
		}
		return roaring.New(), name
	}
	return nil, ""
}
