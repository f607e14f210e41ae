package main

import (
	"testing"

	"github.com/matst80/slask-widgets/pkg/params"
)

func testState() *params.SearchParameters {
	return params.New(indexName).
		AddDisjunctiveFacet(ratingAttribute).
		AddHierarchicalFacet(params.HierarchicalFacet{
			Name:            "category.lvl0",
			Attributes:      categoryAttributes,
			Separator:       separator,
			ShowParentLevel: true,
		})
}

func testIndex() *catalogIndex {
	idx := newCatalogIndex(separator)
	for _, item := range demoItems() {
		idx.add(item)
	}
	return idx
}

func TestSearchUnfiltered(t *testing.T) {
	idx := testIndex()
	res := idx.Search(testState(), ratingAttribute, categorySortBy)

	if res.NbHits != 8 {
		t.Errorf("expected all items, got %d", res.NbHits)
	}
	counts := res.FacetValues(ratingAttribute)
	if counts["4"] != 3 || counts["5"] != 2 {
		t.Errorf("unexpected rating counts: %v", counts)
	}
	root := res.HierarchicalFacet("category.lvl0")
	if root == nil || len(root.Data) != 3 {
		t.Fatalf("expected 3 top-level categories, got %+v", root)
	}
}

func TestSearchDisjunctiveSelfExclusion(t *testing.T) {
	idx := testIndex()
	state := testState().
		AddDisjunctiveRefinement(ratingAttribute, "4").
		AddDisjunctiveRefinement(ratingAttribute, "5")

	res := idx.Search(state, ratingAttribute, categorySortBy)
	if res.NbHits != 5 {
		t.Errorf("expected 5 items rated 4 or 5, got %d", res.NbHits)
	}
	// refining the rating must not shrink the rating's own counts
	counts := res.FacetValues(ratingAttribute)
	if counts["3"] != 1 || counts["1"] != 1 {
		t.Errorf("self-exclusion broken: %v", counts)
	}
}

func TestSearchHierarchicalScoping(t *testing.T) {
	idx := testIndex()
	state := testState().AddHierarchicalRefinement("category.lvl0", "Shoes")

	res := idx.Search(state, ratingAttribute, categorySortBy)
	if res.NbHits != 3 {
		t.Errorf("expected 3 shoes, got %d", res.NbHits)
	}
	root := res.HierarchicalFacet("category.lvl0")
	if len(root.Data) != 3 {
		t.Fatalf("sibling categories stay visible, got %d", len(root.Data))
	}
	foundShoes := false
	for _, value := range root.Data {
		if value.Name == "Shoes" {
			foundShoes = true
			if len(value.Data) != 2 {
				t.Errorf("expected Boots and Sneakers under Shoes, got %d", len(value.Data))
			}
		}
	}
	if !foundShoes {
		t.Fatal("Shoes missing from the tree")
	}

	// rating counts are scoped to the category refinement
	counts := res.FacetValues(ratingAttribute)
	if counts["4"] != 1 || counts["5"] != 1 || counts["3"] != 1 {
		t.Errorf("unexpected scoped rating counts: %v", counts)
	}
	if _, ok := counts["2"]; ok {
		t.Errorf("shirt rating leaked into shoes scope: %v", counts)
	}
}
