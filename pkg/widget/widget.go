package widget

import (
	"github.com/matst80/slask-widgets/pkg/insights"
	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/results"
)

// Helper is the search trigger handed in by the host orchestrator. Search
// is fire and forget: it replaces the state and schedules a new search that
// eventually comes back as a Render call, it never blocks the caller.
type Helper interface {
	State() *params.SearchParameters
	Search(next *params.SearchParameters)
}

// Widget is the lifecycle contract every connector implements. Lifecycle
// calls arrive synchronously from a single-threaded host: Init once, then
// Render once per completed search, then Dispose.
type Widget interface {
	Init(opts *InitOptions)
	Render(opts *RenderOptions)
	// Dispose releases the widget's ownership of the search parameters and
	// returns the updated snapshot.
	Dispose(opts *DisposeOptions) *params.SearchParameters

	GetWidgetUiState(uiState UiState, opts UiStateOptions) UiState
	GetWidgetSearchParameters(state *params.SearchParameters, opts SearchParametersOptions) *params.SearchParameters
	GetRenderState(renderState RenderState, opts *RenderOptions) RenderState
}

type InitOptions struct {
	Helper    Helper
	State     *params.SearchParameters
	CreateURL func(*params.SearchParameters) string
	Insights  insights.Sink
}

type RenderOptions struct {
	Helper    Helper
	State     *params.SearchParameters
	Results   *results.Results
	CreateURL func(*params.SearchParameters) string
	Insights  insights.Sink
}

type DisposeOptions struct {
	State *params.SearchParameters
}

type UiStateOptions struct {
	SearchParameters *params.SearchParameters
}

type SearchParametersOptions struct {
	UiState UiState
}

// InitRenderOptions widens an init call into render options so connectors
// can share one render-state computation for both transitions. Results stays
// nil on the very first delivery.
func InitRenderOptions(opts *InitOptions) *RenderOptions {
	return &RenderOptions{
		Helper:    opts.Helper,
		State:     opts.State,
		CreateURL: opts.CreateURL,
		Insights:  opts.Insights,
	}
}
