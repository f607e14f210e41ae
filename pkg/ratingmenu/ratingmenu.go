package ratingmenu

import (
	"strconv"
	"strings"

	"github.com/matst80/slask-widgets/pkg/insights"
	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/types"
	"github.com/matst80/slask-widgets/pkg/widget"
)

const widgetType = "ratingMenu"

// Params configures one rating menu widget. Thresholds 1..Max-1 are
// selectable, each meaning "this rating and above".
type Params struct {
	Attribute string
	Max       int
}

// Item is one row of the star ladder. Count is the cumulative number of
// results rated at Value or above.
type Item struct {
	Value     int    `json:"value"`
	Stars     []bool `json:"stars"`
	Count     int    `json:"count"`
	IsRefined bool   `json:"isRefined"`
}

type RenderState struct {
	Items        []Item
	Refine       func(threshold int)
	CreateURL    func(threshold int) string
	SendEvent    func(eventType string, threshold int)
	HasNoResults bool
	WidgetParams Params
}

type RenderFunc func(state *RenderState, isFirstRender bool)

type Factory func(widgetParams Params) (widget.Widget, error)

// Connect binds a render callback to the rating refinement logic and
// returns the widget factory.
func Connect(renderFn RenderFunc, unmountFn func()) (Factory, error) {
	if renderFn == nil {
		return nil, types.NewConfigurationError(widgetType, "The render function is required")
	}
	return func(widgetParams Params) (widget.Widget, error) {
		if widgetParams.Attribute == "" {
			return nil, types.NewConfigurationError(widgetType, "The `attribute` option is required")
		}
		if widgetParams.Max <= 0 {
			widgetParams.Max = 5
		}
		return &ratingMenu{
			params:    widgetParams,
			renderFn:  renderFn,
			unmountFn: unmountFn,
		}, nil
	}, nil
}

type ratingMenu struct {
	params    Params
	renderFn  RenderFunc
	unmountFn func()
	sendEvent func(eventType string, threshold int)
	unmounted bool
}

func (w *ratingMenu) Init(opts *widget.InitOptions) {
	w.renderFn(w.renderState(widget.InitRenderOptions(opts)), true)
}

func (w *ratingMenu) Render(opts *widget.RenderOptions) {
	w.renderFn(w.renderState(opts), false)
}

func (w *ratingMenu) Dispose(opts *widget.DisposeOptions) *params.SearchParameters {
	if !w.unmounted {
		w.unmounted = true
		if w.unmountFn != nil {
			w.unmountFn()
		}
	}
	return opts.State.RemoveDisjunctiveFacet(w.params.Attribute)
}

func (w *ratingMenu) GetWidgetUiState(uiState widget.UiState, opts widget.UiStateOptions) widget.UiState {
	active := activeThreshold(opts.SearchParameters, w.params.Attribute)
	if active == 0 {
		return uiState
	}
	return uiState.WithRatingMenu(w.params.Attribute, active)
}

// GetWidgetSearchParameters keeps the facet declared even without an active
// refinement so later refinements don't need a widget remount.
func (w *ratingMenu) GetWidgetSearchParameters(state *params.SearchParameters, opts widget.SearchParametersOptions) *params.SearchParameters {
	next := state.ClearDisjunctiveRefinements(w.params.Attribute).AddDisjunctiveFacet(w.params.Attribute)
	threshold, ok := opts.UiState.RatingMenu[w.params.Attribute]
	if !ok || threshold <= 0 {
		return next
	}
	for v := threshold; v <= w.params.Max; v++ {
		next = next.AddDisjunctiveRefinement(w.params.Attribute, strconv.Itoa(v))
	}
	return next
}

func (w *ratingMenu) GetRenderState(renderState widget.RenderState, opts *widget.RenderOptions) widget.RenderState {
	return renderState.Set(widgetType, w.params.Attribute, w.renderState(opts))
}

func (w *ratingMenu) renderState(opts *widget.RenderOptions) *RenderState {
	attribute := w.params.Attribute
	if w.sendEvent == nil {
		w.sendEvent = w.makeSendEvent(opts)
	}
	refine := func(threshold int) {
		w.sendEvent(insights.EventTypeClick, threshold)
		opts.Helper.Search(w.toggled(opts.Helper.State(), threshold))
	}
	createURL := func(threshold int) string {
		if opts.CreateURL == nil {
			return ""
		}
		return opts.CreateURL(w.toggled(opts.State, threshold))
	}
	ret := &RenderState{
		Refine:       refine,
		CreateURL:    createURL,
		SendEvent:    w.sendEvent,
		HasNoResults: true,
		WidgetParams: w.params,
	}
	if opts.Results == nil {
		return ret
	}
	ret.HasNoResults = opts.Results.HasNoResults()
	counts := opts.Results.FacetValues(attribute)
	if len(counts) == 0 {
		// missing facet data degrades to an empty list, not an error
		return ret
	}
	ret.Items = w.items(counts, activeThreshold(opts.State, attribute))
	return ret
}

// items builds the star ladder from raw per-value counts. Thresholds are
// listed from Max-1 down to 1; once a refinement is active, zero-count rows
// other than the refined one are suppressed.
func (w *ratingMenu) items(counts map[string]int, active int) []Item {
	max := w.params.Max
	cumulative := make([]int, max+1)
	for raw, count := range counts {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		for t := 1; t < max; t++ {
			if value >= t {
				cumulative[t] += count
			}
		}
	}
	items := make([]Item, 0, max-1)
	for t := max - 1; t >= 1; t-- {
		if active != 0 && t != active && cumulative[t] == 0 {
			continue
		}
		stars := make([]bool, max)
		for i := range stars {
			stars[i] = i < t
		}
		items = append(items, Item{
			Value:     t,
			Stars:     stars,
			Count:     cumulative[t],
			IsRefined: active == t,
		})
	}
	return items
}

// toggled computes the parameters after clicking a threshold: re-clicking
// the active one clears the attribute, anything else becomes the disjunctive
// set {threshold..Max}.
func (w *ratingMenu) toggled(state *params.SearchParameters, threshold int) *params.SearchParameters {
	next := state.ClearDisjunctiveRefinements(w.params.Attribute)
	if activeThreshold(state, w.params.Attribute) == threshold {
		return next
	}
	for v := threshold; v <= w.params.Max; v++ {
		next = next.AddDisjunctiveRefinement(w.params.Attribute, strconv.Itoa(v))
	}
	return next
}

func (w *ratingMenu) makeSendEvent(opts *widget.RenderOptions) func(string, int) {
	sink := opts.Insights
	if sink == nil {
		sink = insights.NoopSink{}
	}
	attribute := w.params.Attribute
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
		IsRefined: func(value string) bool {
			threshold, err := strconv.Atoi(value)
			if err != nil {
				return false
			}
			return activeThreshold(currentState(), attribute) == threshold
		},
		FilterExpr: func(value string) string {
			return attribute + ">=" + value
		},
	}
	return func(eventType string, threshold int) {
		sender.Send(eventType, strconv.Itoa(threshold))
	}
}

// activeThreshold is the minimum numeric value among the attribute's
// disjunctive refinements, 0 when nothing is refined.
func activeThreshold(state *params.SearchParameters, attribute string) int {
	active := 0
	for _, raw := range state.GetDisjunctiveRefinements(attribute) {
		value, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if active == 0 || value < active {
			active = value
		}
	}
	return active
}
