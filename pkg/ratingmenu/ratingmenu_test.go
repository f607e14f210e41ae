package ratingmenu

import (
	"errors"
	"strings"
	"testing"

	"github.com/matst80/slask-widgets/pkg/insights"
	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/results"
	"github.com/matst80/slask-widgets/pkg/types"
	"github.com/matst80/slask-widgets/pkg/widget"
)

type fakeHelper struct {
	state    *params.SearchParameters
	searches int
}

func (h *fakeHelper) State() *params.SearchParameters {
	return h.state
}

func (h *fakeHelper) Search(next *params.SearchParameters) {
	h.state = next
	h.searches++
}

type recordingSink struct {
	events []*insights.Event
}

func (s *recordingSink) Send(event *insights.Event) {
	s.events = append(s.events, event)
}

func gradeCounts() map[string]int {
	return map[string]int{"0": 5, "1": 10, "2": 20, "3": 50, "4": 900, "5": 100}
}

func newTestWidget(t *testing.T) (widget.Widget, *[]*RenderState) {
	t.Helper()
	var rendered []*RenderState
	factory, err := Connect(func(state *RenderState, isFirstRender bool) {
		rendered = append(rendered, state)
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w, err := factory(Params{Attribute: "grade"})
	if err != nil {
		t.Fatal(err)
	}
	return w, &rendered
}

func renderOptions(helper *fakeHelper, sink insights.Sink, res *results.Results) *widget.RenderOptions {
	return &widget.RenderOptions{
		Helper:   helper,
		State:    helper.state,
		Results:  res,
		Insights: sink,
	}
}

func TestConnectRequiresRenderFunction(t *testing.T) {
	_, err := Connect(nil, nil)
	var configErr *types.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "documentation") {
		t.Errorf("error should point to the documentation: %s", err)
	}
}

func TestFactoryRequiresAttribute(t *testing.T) {
	factory, err := Connect(func(*RenderState, bool) {}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := factory(Params{}); err == nil {
		t.Error("expected a configuration error for the missing attribute")
	}
}

func TestInitDeliversFirstRender(t *testing.T) {
	w, rendered := newTestWidget(t)
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}

	w.Init(&widget.InitOptions{Helper: helper, State: helper.state})

	if len(*rendered) != 1 {
		t.Fatalf("expected one delivery, got %d", len(*rendered))
	}
	state := (*rendered)[0]
	if len(state.Items) != 0 {
		t.Errorf("no results yet, expected no items, got %d", len(state.Items))
	}
	if !state.HasNoResults {
		t.Error("expected HasNoResults before the first search completes")
	}
}

func TestLadderCountsAreCumulative(t *testing.T) {
	w, rendered := newTestWidget(t)
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}

	w.Render(renderOptions(helper, nil, &results.Results{
		NbHits: 1085,
		Facets: map[string]map[string]int{"grade": gradeCounts()},
	}))

	items := (*rendered)[0].Items
	expected := []Item{
		{Value: 4, Count: 1000},
		{Value: 3, Count: 1050},
		{Value: 2, Count: 1070},
		{Value: 1, Count: 1080},
	}
	if len(items) != len(expected) {
		t.Fatalf("expected %d items, got %d", len(expected), len(items))
	}
	for i, want := range expected {
		if items[i].Value != want.Value || items[i].Count != want.Count {
			t.Errorf("item %d: expected threshold %d count %d, got %d/%d", i, want.Value, want.Count, items[i].Value, items[i].Count)
		}
		if items[i].IsRefined {
			t.Errorf("item %d: nothing refined yet", i)
		}
		for s, filled := range items[i].Stars {
			if filled != (s < items[i].Value) {
				t.Errorf("item %d: star %d should be %v", i, s, s < items[i].Value)
			}
		}
	}
	// monotonic ladder
	for i := 1; i < len(items); i++ {
		if items[i].Count < items[i-1].Count {
			t.Errorf("cumulative counts must not decrease towards lower thresholds")
		}
	}
}

func TestZeroCountRowsSuppressedOnlyWhenRefined(t *testing.T) {
	counts := map[string]int{"1": 5, "3": 7}

	w, rendered := newTestWidget(t)
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}
	res := &results.Results{NbHits: 12, Facets: map[string]map[string]int{"grade": counts}}

	w.Render(renderOptions(helper, nil, res))
	if got := len((*rendered)[0].Items); got != 4 {
		t.Errorf("without a refinement all rows are shown, got %d", got)
	}

	helper.state = helper.state.
		AddDisjunctiveRefinement("grade", "3").
		AddDisjunctiveRefinement("grade", "4").
		AddDisjunctiveRefinement("grade", "5")
	w.Render(renderOptions(helper, nil, res))

	items := (*rendered)[1].Items
	if len(items) != 3 {
		t.Fatalf("threshold 4 has no results and is not refined, expected 3 rows, got %d", len(items))
	}
	for _, item := range items {
		if item.Value == 4 {
			t.Error("zero-count row should be suppressed while another threshold is refined")
		}
		if item.IsRefined != (item.Value == 3) {
			t.Errorf("threshold %d: unexpected refined flag", item.Value)
		}
	}
}

func TestRefineTogglesThreshold(t *testing.T) {
	w, rendered := newTestWidget(t)
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}
	res := &results.Results{NbHits: 1085, Facets: map[string]map[string]int{"grade": gradeCounts()}}

	w.Render(renderOptions(helper, nil, res))
	refine := (*rendered)[0].Refine

	refine(3)
	if got := helper.state.GetDisjunctiveRefinements("grade"); len(got) != 3 {
		t.Fatalf("refining 3 with max 5 should give {3,4,5}, got %v", got)
	}
	for _, v := range []string{"3", "4", "5"} {
		if !helper.state.IsDisjunctiveRefined("grade", v) {
			t.Errorf("expected %s to be refined", v)
		}
	}
	if helper.searches != 1 {
		t.Errorf("refine should trigger exactly one search, got %d", helper.searches)
	}

	// re-clicking the active threshold clears everything
	refine(3)
	if got := helper.state.GetDisjunctiveRefinements("grade"); len(got) != 0 {
		t.Errorf("re-clicking should clear the refinements, got %v", got)
	}
	if helper.searches != 2 {
		t.Errorf("clearing is still a search, got %d", helper.searches)
	}
}

func TestEventEmissionPolicy(t *testing.T) {
	w, rendered := newTestWidget(t)
	sink := &recordingSink{}
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}
	res := &results.Results{NbHits: 1085, Facets: map[string]map[string]int{"grade": gradeCounts()}}

	w.Render(renderOptions(helper, sink, res))
	refine := (*rendered)[0].Refine

	refine(3)
	if len(sink.events) != 1 {
		t.Fatalf("applying a new filter fires one event, got %d", len(sink.events))
	}
	event := sink.events[0]
	if event.InsightsMethod != insights.MethodClickedFilters {
		t.Errorf("unexpected method %q", event.InsightsMethod)
	}
	if event.WidgetType != "ratingMenu" {
		t.Errorf("unexpected widget type %q", event.WidgetType)
	}
	if event.Index != "products" {
		t.Errorf("unexpected index %q", event.Index)
	}
	if len(event.Filters) != 1 || event.Filters[0] != "grade>=3" {
		t.Errorf("unexpected filters %v", event.Filters)
	}

	// toggling the active threshold off is not a new filter
	refine(3)
	if len(sink.events) != 1 {
		t.Errorf("removal must not emit, got %d events", len(sink.events))
	}

	// switching to a different threshold is
	refine(3)
	refine(2)
	if len(sink.events) != 3 {
		t.Errorf("expected events for the two filter applications, got %d", len(sink.events))
	}
}

func TestEventSenderIsCachedAcrossRenders(t *testing.T) {
	w, rendered := newTestWidget(t)
	sink := &recordingSink{}
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}
	res := &results.Results{NbHits: 1085, Facets: map[string]map[string]int{"grade": gradeCounts()}}

	w.Render(renderOptions(helper, sink, res))
	w.Render(renderOptions(helper, sink, res))

	first := (*rendered)[0].SendEvent
	second := (*rendered)[1].SendEvent
	// can't compare funcs directly, but both must feed the same sink with
	// one stable policy: a click through either fires exactly once
	first(insights.EventTypeClick, 3)
	if len(sink.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.events))
	}
	helper.state = helper.state.
		AddDisjunctiveRefinement("grade", "3").
		AddDisjunctiveRefinement("grade", "4").
		AddDisjunctiveRefinement("grade", "5")
	second(insights.EventTypeClick, 3)
	if len(sink.events) != 1 {
		t.Errorf("the cached sender must see the live refinement, got %d events", len(sink.events))
	}
}

func TestUiStateRoundTrip(t *testing.T) {
	w, _ := newTestWidget(t)
	base := params.New("products")

	withRefinement := w.GetWidgetSearchParameters(base, widget.SearchParametersOptions{
		UiState: widget.UiState{RatingMenu: map[string]int{"grade": 3}},
	})
	if got := withRefinement.GetDisjunctiveRefinements("grade"); len(got) != 3 {
		t.Fatalf("expected {3,4,5}, got %v", got)
	}

	uiState := w.GetWidgetUiState(widget.UiState{}, widget.UiStateOptions{SearchParameters: withRefinement})
	if uiState.RatingMenu["grade"] != 3 {
		t.Fatalf("expected threshold 3 in ui state, got %v", uiState.RatingMenu)
	}

	decoded := w.GetWidgetSearchParameters(base, widget.SearchParametersOptions{UiState: uiState})
	for _, v := range []string{"3", "4", "5"} {
		if !decoded.IsDisjunctiveRefined("grade", v) {
			t.Errorf("round trip lost refinement %s", v)
		}
	}
}

func TestUiStateUntouchedWithoutRefinement(t *testing.T) {
	w, _ := newTestWidget(t)
	state := params.New("products").AddDisjunctiveFacet("grade")

	sibling := widget.UiState{HierarchicalMenu: map[string][]string{"category.lvl0": {"Shoes"}}}
	uiState := w.GetWidgetUiState(sibling, widget.UiStateOptions{SearchParameters: state})
	if uiState.RatingMenu != nil {
		t.Errorf("no refinement, the namespace must stay absent: %v", uiState.RatingMenu)
	}
	if len(uiState.HierarchicalMenu) != 1 {
		t.Error("sibling namespaces must never be removed")
	}
}

func TestAbsentUiStateClearsRefinementButKeepsFacet(t *testing.T) {
	w, _ := newTestWidget(t)
	refined := params.New("products").
		AddDisjunctiveFacet("grade").
		AddDisjunctiveRefinement("grade", "4").
		AddDisjunctiveRefinement("grade", "5")

	next := w.GetWidgetSearchParameters(refined, widget.SearchParametersOptions{})
	if len(next.GetDisjunctiveRefinements("grade")) != 0 {
		t.Errorf("absent ui state clears the refinements, got %v", next.GetDisjunctiveRefinements("grade"))
	}
	if !next.HasDisjunctiveFacet("grade") {
		t.Error("the facet stays declared for future refinements")
	}
}

func TestDisposeReleasesOwnership(t *testing.T) {
	unmounts := 0
	factory, err := Connect(func(*RenderState, bool) {}, func() { unmounts++ })
	if err != nil {
		t.Fatal(err)
	}
	w, err := factory(Params{Attribute: "grade"})
	if err != nil {
		t.Fatal(err)
	}

	state := params.New("products").
		AddDisjunctiveFacet("grade").
		AddDisjunctiveRefinement("grade", "4")

	released := w.Dispose(&widget.DisposeOptions{State: state})
	if released.HasDisjunctiveFacet("grade") {
		t.Error("dispose must remove the facet declaration")
	}
	if len(released.GetDisjunctiveRefinements("grade")) != 0 {
		t.Error("dispose must remove the refinements")
	}
	if unmounts != 1 {
		t.Fatalf("unmount hook should run exactly once, got %d", unmounts)
	}

	w.Dispose(&widget.DisposeOptions{State: state})
	if unmounts != 1 {
		t.Errorf("unmount hook must not run again, got %d", unmounts)
	}
}

func TestGetRenderStateNamespaces(t *testing.T) {
	w, _ := newTestWidget(t)
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}
	res := &results.Results{NbHits: 12, Facets: map[string]map[string]int{"grade": {"4": 12}}}

	renderState := widget.RenderState{}.Set("other", "x", 1)
	renderState = w.GetRenderState(renderState, renderOptions(helper, nil, res))

	if _, ok := renderState["ratingMenu"]["grade"]; !ok {
		t.Fatal("expected the widget state under its namespace")
	}
	if _, ok := renderState["other"]["x"]; !ok {
		t.Error("other namespaces must not be clobbered")
	}
}

func TestCreateURL(t *testing.T) {
	w, rendered := newTestWidget(t)
	helper := &fakeHelper{state: params.New("products").AddDisjunctiveFacet("grade")}

	w.Render(&widget.RenderOptions{
		Helper:  helper,
		State:   helper.state,
		Results: &results.Results{NbHits: 10, Facets: map[string]map[string]int{"grade": {"4": 10}}},
		CreateURL: func(next *params.SearchParameters) string {
			return strings.Join(next.GetDisjunctiveRefinements("grade"), ",")
		},
	})

	if got := (*rendered)[0].CreateURL(4); got != "4,5" {
		t.Errorf("expected the toggled parameters in the url, got %q", got)
	}
}
