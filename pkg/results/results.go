package results

// Results is an immutable snapshot of one completed search, handed to the
// widgets on every render. Missing facet data degrades to empty values, it
// is never an error.
type Results struct {
	NbHits             int                       `json:"nbHits"`
	Facets             map[string]map[string]int `json:"facets,omitempty"`
	HierarchicalFacets map[string]*FacetValue    `json:"hierarchicalFacets,omitempty"`
}

// FacetValue is one node in a hierarchical facet tree. Path is the full
// separator joined path from the root, Name the last segment only.
type FacetValue struct {
	Name      string        `json:"name"`
	Path      string        `json:"path"`
	Count     int           `json:"count"`
	IsRefined bool          `json:"isRefined,omitempty"`
	Data      []*FacetValue `json:"data,omitempty"`
}

func (r *Results) FacetValues(attribute string) map[string]int {
	if r == nil || r.Facets == nil {
		return nil
	}
	return r.Facets[attribute]
}

func (r *Results) HierarchicalFacet(name string) *FacetValue {
	if r == nil || r.HierarchicalFacets == nil {
		return nil
	}
	return r.HierarchicalFacets[name]
}

func (r *Results) HasNoResults() bool {
	return r == nil || r.NbHits == 0
}
