package hierarchical

import (
	"log"
	"strings"

	"github.com/matst80/slask-widgets/pkg/insights"
	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/results"
	"github.com/matst80/slask-widgets/pkg/types"
	"github.com/matst80/slask-widgets/pkg/widget"
)

const (
	widgetType       = "hierarchicalMenu"
	defaultSeparator = " > "
)

// Params configures one hierarchical menu widget. Attributes holds one
// facet attribute per tree depth, ordered from the root. The first
// attribute names the facet and is the key used in UiState and parameter
// namespaces.
type Params struct {
	Attributes      []string
	Separator       string
	RootPath        string
	ShowParentLevel *bool
	Limit           int
	ShowMore        bool
	ShowMoreLimit   int
	SortBy          []string
	TransformItems  func([]Item) []Item
}

// Item is one projected node. Value is the full separator joined path used
// for refining, Label the last segment only.
type Item struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Count     int    `json:"count"`
	IsRefined bool   `json:"isRefined"`
	Children  []Item `json:"children,omitempty"`
}

type RenderState struct {
	Items             []Item
	Refine            func(path string)
	CreateURL         func(path string) string
	SendEvent         func(eventType, path string)
	ToggleShowMore    func()
	IsShowingMore     bool
	CanToggleShowMore bool
	HasNoResults      bool
	WidgetParams      Params
}

type RenderFunc func(state *RenderState, isFirstRender bool)

type Factory func(widgetParams Params) (widget.Widget, error)

// Connect binds a render callback to the hierarchical refinement logic and
// returns the widget factory.
func Connect(renderFn RenderFunc, unmountFn func()) (Factory, error) {
	if renderFn == nil {
		return nil, types.NewConfigurationError(widgetType, "The render function is required")
	}
	return func(widgetParams Params) (widget.Widget, error) {
		if len(widgetParams.Attributes) == 0 {
			return nil, types.NewConfigurationError(widgetType, "The `attributes` option expects an array of strings")
		}
		if widgetParams.Separator == "" {
			widgetParams.Separator = defaultSeparator
		}
		if widgetParams.Limit <= 0 {
			widgetParams.Limit = 10
		}
		if widgetParams.ShowMoreLimit <= 0 {
			widgetParams.ShowMoreLimit = 20
		}
		if widgetParams.ShowMore && widgetParams.ShowMoreLimit <= widgetParams.Limit {
			return nil, types.NewConfigurationError(widgetType, "`showMoreLimit` should be greater than `limit`")
		}
		if len(widgetParams.SortBy) == 0 {
			widgetParams.SortBy = []string{"name:asc"}
		}
		return &hierarchicalMenu{
			params:   widgetParams,
			name:     widgetParams.Attributes[0],
			renderFn: renderFn,
			unmount:  unmountFn,
		}, nil
	}, nil
}

type hierarchicalMenu struct {
	params   Params
	name     string
	renderFn RenderFunc
	unmount  func()

	// kept across renders
	sendEvent      func(eventType, path string)
	toggleShowMore func()
	isShowingMore  bool
	lastOpts       *widget.RenderOptions

	unmounted bool
}

func (w *hierarchicalMenu) Init(opts *widget.InitOptions) {
	w.renderFn(w.renderState(widget.InitRenderOptions(opts)), true)
}

func (w *hierarchicalMenu) Render(opts *widget.RenderOptions) {
	w.renderFn(w.renderState(opts), false)
}

func (w *hierarchicalMenu) Dispose(opts *widget.DisposeOptions) *params.SearchParameters {
	if !w.unmounted {
		w.unmounted = true
		if w.unmount != nil {
			w.unmount()
		}
	}
	return opts.State.RemoveHierarchicalFacet(w.name)
}

func (w *hierarchicalMenu) GetWidgetUiState(uiState widget.UiState, opts widget.UiStateOptions) widget.UiState {
	breadcrumb := opts.SearchParameters.HierarchicalBreadcrumb(w.name)
	if len(breadcrumb) == 0 {
		return uiState
	}
	return uiState.WithHierarchicalMenu(w.name, breadcrumb)
}

// GetWidgetSearchParameters declares the facet configuration every time and
// warns when another widget already configured the same facet differently,
// the later configuration wins.
func (w *hierarchicalMenu) GetWidgetSearchParameters(state *params.SearchParameters, opts widget.SearchParametersOptions) *params.SearchParameters {
	config := w.facetConfig()
	if existing, ok := state.GetHierarchicalFacet(w.name); ok && !existing.Equals(config) {
		log.Printf("HierarchicalMenu: the facet %q is already configured with different parameters, the latest configuration is used", w.name)
	}
	next := state.RemoveHierarchicalFacet(w.name).AddHierarchicalFacet(config)

	bound := w.params.Limit
	if w.params.ShowMore && w.params.ShowMoreLimit > bound {
		bound = w.params.ShowMoreLimit
	}
	next = next.SetMaxValuesPerFacet(bound)

	breadcrumb := opts.UiState.HierarchicalMenu[w.name]
	if len(breadcrumb) == 0 {
		return next
	}
	return next.AddHierarchicalRefinement(w.name, strings.Join(breadcrumb, w.params.Separator))
}

func (w *hierarchicalMenu) GetRenderState(renderState widget.RenderState, opts *widget.RenderOptions) widget.RenderState {
	return renderState.Set(widgetType, w.name, w.renderState(opts))
}

func (w *hierarchicalMenu) facetConfig() params.HierarchicalFacet {
	showParentLevel := true
	if w.params.ShowParentLevel != nil {
		showParentLevel = *w.params.ShowParentLevel
	}
	return params.HierarchicalFacet{
		Name:            w.name,
		Attributes:      w.params.Attributes,
		Separator:       w.params.Separator,
		RootPath:        w.params.RootPath,
		ShowParentLevel: showParentLevel,
	}
}

func (w *hierarchicalMenu) currentLimit() int {
	if w.isShowingMore {
		return w.params.ShowMoreLimit
	}
	return w.params.Limit
}

func (w *hierarchicalMenu) renderState(opts *widget.RenderOptions) *RenderState {
	w.lastOpts = opts
	if w.sendEvent == nil {
		w.sendEvent = w.makeSendEvent(opts)
	}
	if w.toggleShowMore == nil {
		// flips the display depth and re-renders with the cached options,
		// no new search is issued
		w.toggleShowMore = func() {
			w.isShowingMore = !w.isShowingMore
			if w.lastOpts != nil {
				w.renderFn(w.renderState(w.lastOpts), false)
			}
		}
	}
	refine := func(path string) {
		w.sendEvent(insights.EventTypeClick, path)
		opts.Helper.Search(opts.Helper.State().ToggleHierarchicalRefinement(w.name, path))
	}
	createURL := func(path string) string {
		if opts.CreateURL == nil {
			return ""
		}
		return opts.CreateURL(opts.State.ToggleHierarchicalRefinement(w.name, path))
	}
	ret := &RenderState{
		Refine:         refine,
		CreateURL:      createURL,
		SendEvent:      w.sendEvent,
		ToggleShowMore: w.toggleShowMore,
		IsShowingMore:  w.isShowingMore,
		HasNoResults:   true,
		WidgetParams:   w.params,
	}
	if opts.Results == nil {
		return ret
	}
	ret.HasNoResults = opts.Results.HasNoResults()

	limit := w.currentLimit()
	root := opts.Results.HierarchicalFacet(w.name)
	var values []*results.FacetValue
	if root != nil {
		values = root.Data
	}
	items := projectValues(values, limit)
	if w.params.TransformItems != nil {
		items = w.params.TransformItems(items)
	}
	ret.Items = items
	ret.CanToggleShowMore = w.params.ShowMore && (w.isShowingMore || !hasExhaustiveValues(len(values), limit, opts.State.MaxValuesPerFacet))
	return ret
}

// projectValues renames the raw tree shape into the public one, truncating
// every level to the active display limit.
func projectValues(values []*results.FacetValue, limit int) []Item {
	if len(values) == 0 {
		return nil
	}
	n := min(limit, len(values))
	items := make([]Item, 0, n)
	for _, value := range values[:n] {
		items = append(items, Item{
			Label:     value.Name,
			Value:     value.Path,
			Count:     value.Count,
			IsRefined: value.IsRefined,
			Children:  projectValues(value.Data, limit),
		})
	}
	return items
}

// hasExhaustiveValues reports whether the current page of facet values is
// complete. When the configured bound leaves no headroom over the limit a
// full page counts as non-exhaustive, keeping the show-more affordance
// visible.
func hasExhaustiveValues(count, limit, maxValuesPerFacet int) bool {
	if maxValuesPerFacet > limit {
		return count <= limit
	}
	return count < limit
}

func (w *hierarchicalMenu) makeSendEvent(opts *widget.RenderOptions) func(string, string) {
	sink := opts.Insights
	if sink == nil {
		sink = insights.NoopSink{}
	}
	currentState := func() *params.SearchParameters {
		if opts.Helper != nil {
			return opts.Helper.State()
		}
		return opts.State
	}
	sender := &insights.FacetEventSender{
		Sink:       sink,
		Index:      opts.State.Index,
		WidgetType: widgetType,
		IsRefined: func(path string) bool {
			return currentState().GetHierarchicalRefinement(w.name) == path
		},
		FilterExpr: func(path string) string {
			return path
		},
	}
	return sender.Send
}
