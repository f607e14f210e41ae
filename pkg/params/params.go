package params

import (
	"slices"
	"strings"
)

// HierarchicalFacet is the declared configuration for one hierarchical
// attribute group. Name doubles as the refinement key and is derived from
// the first attribute by the widgets that register it.
type HierarchicalFacet struct {
	Name            string   `json:"name"`
	Attributes      []string `json:"attributes"`
	Separator       string   `json:"separator"`
	RootPath        string   `json:"rootPath,omitempty"`
	ShowParentLevel bool     `json:"showParentLevel"`
}

func (h HierarchicalFacet) Equals(other HierarchicalFacet) bool {
	return h.Name == other.Name &&
		h.Separator == other.Separator &&
		h.RootPath == other.RootPath &&
		h.ShowParentLevel == other.ShowParentLevel &&
		slices.Equal(h.Attributes, other.Attributes)
}

// SearchParameters is an immutable snapshot of the query state owned by the
// widgets. Every mutator returns a fresh copy, the receiver is never changed
// in place.
type SearchParameters struct {
	Index                   string                       `json:"index,omitempty"`
	MaxValuesPerFacet       int                          `json:"maxValuesPerFacet,omitempty"`
	DisjunctiveFacets       []string                     `json:"disjunctiveFacets,omitempty"`
	DisjunctiveRefinements  map[string][]string          `json:"disjunctiveFacetsRefinements,omitempty"`
	HierarchicalFacets      map[string]HierarchicalFacet `json:"hierarchicalFacets,omitempty"`
	HierarchicalRefinements map[string][]string          `json:"hierarchicalFacetsRefinements,omitempty"`
}

func New(index string) *SearchParameters {
	return &SearchParameters{Index: index}
}

func (p *SearchParameters) clone() *SearchParameters {
	ret := &SearchParameters{
		Index:             p.Index,
		MaxValuesPerFacet: p.MaxValuesPerFacet,
		DisjunctiveFacets: slices.Clone(p.DisjunctiveFacets),
	}
	if p.DisjunctiveRefinements != nil {
		ret.DisjunctiveRefinements = make(map[string][]string, len(p.DisjunctiveRefinements))
		for k, v := range p.DisjunctiveRefinements {
			ret.DisjunctiveRefinements[k] = slices.Clone(v)
		}
	}
	if p.HierarchicalFacets != nil {
		ret.HierarchicalFacets = make(map[string]HierarchicalFacet, len(p.HierarchicalFacets))
		for k, v := range p.HierarchicalFacets {
			v.Attributes = slices.Clone(v.Attributes)
			ret.HierarchicalFacets[k] = v
		}
	}
	if p.HierarchicalRefinements != nil {
		ret.HierarchicalRefinements = make(map[string][]string, len(p.HierarchicalRefinements))
		for k, v := range p.HierarchicalRefinements {
			ret.HierarchicalRefinements[k] = slices.Clone(v)
		}
	}
	return ret
}

func (p *SearchParameters) HasDisjunctiveFacet(attribute string) bool {
	return slices.Contains(p.DisjunctiveFacets, attribute)
}

func (p *SearchParameters) AddDisjunctiveFacet(attribute string) *SearchParameters {
	if p.HasDisjunctiveFacet(attribute) {
		return p
	}
	ret := p.clone()
	ret.DisjunctiveFacets = append(ret.DisjunctiveFacets, attribute)
	return ret
}

// RemoveDisjunctiveFacet drops the facet declaration and every refinement
// on it.
func (p *SearchParameters) RemoveDisjunctiveFacet(attribute string) *SearchParameters {
	ret := p.clone()
	ret.DisjunctiveFacets = slices.DeleteFunc(ret.DisjunctiveFacets, func(a string) bool {
		return a == attribute
	})
	delete(ret.DisjunctiveRefinements, attribute)
	return ret
}

func (p *SearchParameters) GetDisjunctiveRefinements(attribute string) []string {
	return p.DisjunctiveRefinements[attribute]
}

func (p *SearchParameters) IsDisjunctiveRefined(attribute, value string) bool {
	return slices.Contains(p.DisjunctiveRefinements[attribute], value)
}

func (p *SearchParameters) AddDisjunctiveRefinement(attribute, value string) *SearchParameters {
	if p.IsDisjunctiveRefined(attribute, value) {
		return p
	}
	ret := p.clone()
	if ret.DisjunctiveRefinements == nil {
		ret.DisjunctiveRefinements = map[string][]string{}
	}
	ret.DisjunctiveRefinements[attribute] = append(ret.DisjunctiveRefinements[attribute], value)
	return ret
}

func (p *SearchParameters) RemoveDisjunctiveRefinement(attribute, value string) *SearchParameters {
	if !p.IsDisjunctiveRefined(attribute, value) {
		return p
	}
	ret := p.clone()
	ret.DisjunctiveRefinements[attribute] = slices.DeleteFunc(ret.DisjunctiveRefinements[attribute], func(v string) bool {
		return v == value
	})
	if len(ret.DisjunctiveRefinements[attribute]) == 0 {
		delete(ret.DisjunctiveRefinements, attribute)
	}
	return ret
}

func (p *SearchParameters) ClearDisjunctiveRefinements(attribute string) *SearchParameters {
	if len(p.DisjunctiveRefinements[attribute]) == 0 {
		return p
	}
	ret := p.clone()
	delete(ret.DisjunctiveRefinements, attribute)
	return ret
}

func (p *SearchParameters) GetHierarchicalFacet(name string) (HierarchicalFacet, bool) {
	f, ok := p.HierarchicalFacets[name]
	return f, ok
}

func (p *SearchParameters) AddHierarchicalFacet(facet HierarchicalFacet) *SearchParameters {
	ret := p.clone()
	if ret.HierarchicalFacets == nil {
		ret.HierarchicalFacets = map[string]HierarchicalFacet{}
	}
	ret.HierarchicalFacets[facet.Name] = facet
	return ret
}

// RemoveHierarchicalFacet drops the facet configuration and its refinement.
func (p *SearchParameters) RemoveHierarchicalFacet(name string) *SearchParameters {
	ret := p.clone()
	delete(ret.HierarchicalFacets, name)
	delete(ret.HierarchicalRefinements, name)
	return ret
}

// GetHierarchicalRefinement returns the active path for the facet, empty
// string when nothing is refined. A hierarchical facet holds at most one
// refinement at a time.
func (p *SearchParameters) GetHierarchicalRefinement(name string) string {
	values := p.HierarchicalRefinements[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (p *SearchParameters) AddHierarchicalRefinement(name, path string) *SearchParameters {
	ret := p.clone()
	if ret.HierarchicalRefinements == nil {
		ret.HierarchicalRefinements = map[string][]string{}
	}
	ret.HierarchicalRefinements[name] = []string{path}
	return ret
}

func (p *SearchParameters) ClearHierarchicalRefinement(name string) *SearchParameters {
	if len(p.HierarchicalRefinements[name]) == 0 {
		return p
	}
	ret := p.clone()
	delete(ret.HierarchicalRefinements, name)
	return ret
}

// ToggleHierarchicalRefinement selects the given path, or clears the
// refinement when the path is already the active one.
func (p *SearchParameters) ToggleHierarchicalRefinement(name, path string) *SearchParameters {
	if p.GetHierarchicalRefinement(name) == path {
		return p.ClearHierarchicalRefinement(name)
	}
	return p.AddHierarchicalRefinement(name, path)
}

// HierarchicalBreadcrumb splits the active refinement path into trimmed
// segments, one per tree depth. Empty when nothing is refined.
func (p *SearchParameters) HierarchicalBreadcrumb(name string) []string {
	refinement := p.GetHierarchicalRefinement(name)
	if refinement == "" {
		return nil
	}
	facet, ok := p.HierarchicalFacets[name]
	separator := facet.Separator
	if !ok || separator == "" {
		separator = " > "
	}
	parts := strings.Split(refinement, separator)
	ret := make([]string, 0, len(parts))
	for _, part := range parts {
		ret = append(ret, strings.TrimSpace(part))
	}
	return ret
}

// SetMaxValuesPerFacet raises the bound, it never lowers an already higher
// value so widgets sharing a facet cooperate instead of clobbering each
// other.
func (p *SearchParameters) SetMaxValuesPerFacet(bound int) *SearchParameters {
	if bound <= p.MaxValuesPerFacet {
		return p
	}
	ret := p.clone()
	ret.MaxValuesPerFacet = bound
	return ret
}
