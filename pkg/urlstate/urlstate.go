package urlstate

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/slask-widgets/pkg/widget"
)

// Route is the URL projection of one search page: the flat query fields
// plus the widgets' UiState. Rating refinements travel as `rm=<attr>:<n>`,
// hierarchical breadcrumbs as `hm=<name>:<label>||<label>`.
type Route struct {
	Query   string         `json:"query,omitempty" schema:"query"`
	Page    int            `json:"page,omitempty" schema:"page"`
	UiState widget.UiState `json:"uiState,omitempty" schema:"-"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func Decode(values url.Values) (*Route, error) {
	ret := &Route{}
	if err := decoder.Decode(ret, values); err != nil {
		return nil, err
	}
	for _, raw := range values["rm"] {
		attribute, value, found := strings.Cut(raw, ":")
		if !found || attribute == "" {
			continue
		}
		threshold, err := strconv.Atoi(value)
		if err != nil || threshold <= 0 {
			continue
		}
		ret.UiState = ret.UiState.WithRatingMenu(attribute, threshold)
	}
	for _, raw := range values["hm"] {
		name, value, found := strings.Cut(raw, ":")
		if !found || name == "" || value == "" {
			continue
		}
		ret.UiState = ret.UiState.WithHierarchicalMenu(name, strings.Split(value, "||"))
	}
	return ret, nil
}

func (r *Route) Encode() url.Values {
	values := url.Values{}
	if r.Query != "" {
		values.Set("query", r.Query)
	}
	if r.Page > 0 {
		values.Set("page", strconv.Itoa(r.Page))
	}
	for _, attribute := range slices.Sorted(maps.Keys(r.UiState.RatingMenu)) {
		values.Add("rm", fmt.Sprintf("%s:%d", attribute, r.UiState.RatingMenu[attribute]))
	}
	for _, name := range slices.Sorted(maps.Keys(r.UiState.HierarchicalMenu)) {
		values.Add("hm", name+":"+strings.Join(r.UiState.HierarchicalMenu[name], "||"))
	}
	return values
}
