package widget

import "maps"

// UiState is the serializable projection of every active refinement, keyed
// by connector namespace and attribute. Values stay plain so the whole
// thing survives a JSON or URL round trip.
type UiState struct {
	RatingMenu       map[string]int      `json:"ratingMenu,omitempty"`
	HierarchicalMenu map[string][]string `json:"hierarchicalMenu,omitempty"`
}

func (u UiState) IsEmpty() bool {
	return len(u.RatingMenu) == 0 && len(u.HierarchicalMenu) == 0
}

// WithRatingMenu returns a copy with one ratingMenu entry set, sibling
// namespaces untouched.
func (u UiState) WithRatingMenu(attribute string, value int) UiState {
	ret := u
	ret.RatingMenu = maps.Clone(u.RatingMenu)
	if ret.RatingMenu == nil {
		ret.RatingMenu = map[string]int{}
	}
	ret.RatingMenu[attribute] = value
	return ret
}

// WithHierarchicalMenu returns a copy with one hierarchicalMenu entry set,
// sibling namespaces untouched.
func (u UiState) WithHierarchicalMenu(name string, breadcrumb []string) UiState {
	ret := u
	ret.HierarchicalMenu = maps.Clone(u.HierarchicalMenu)
	if ret.HierarchicalMenu == nil {
		ret.HierarchicalMenu = map[string][]string{}
	}
	ret.HierarchicalMenu[name] = breadcrumb
	return ret
}

// RenderState aggregates widget render states across all active connectors,
// keyed by connector namespace and attribute. Entries from other widgets are
// never clobbered.
type RenderState map[string]map[string]interface{}

func (r RenderState) Set(namespace, attribute string, state interface{}) RenderState {
	if r == nil {
		r = RenderState{}
	}
	byAttribute, ok := r[namespace]
	if !ok {
		byAttribute = map[string]interface{}{}
		r[namespace] = byAttribute
	}
	byAttribute[attribute] = state
	return r
}
