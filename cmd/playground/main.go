package main

import (
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-widgets/pkg/hierarchical"
	"github.com/matst80/slask-widgets/pkg/insights"
	"github.com/matst80/slask-widgets/pkg/params"
	"github.com/matst80/slask-widgets/pkg/ratingmenu"
	"github.com/matst80/slask-widgets/pkg/results"
	"github.com/matst80/slask-widgets/pkg/statestore"
	"github.com/matst80/slask-widgets/pkg/urlstate"
	"github.com/matst80/slask-widgets/pkg/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var listenAddress = ":8080"
var rabbitUrl = os.Getenv("RABBIT_URL")
var redisAddr = os.Getenv("REDIS_ADDR")
var redisPassword = os.Getenv("REDIS_PASSWORD")

const (
	indexName       = "products"
	ratingAttribute = "grade"
	separator       = " > "
)

var categoryAttributes = []string{"category.lvl0", "category.lvl1", "category.lvl2"}
var categorySortBy = []string{"name:asc"}

var noSearches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "slaskwidgets_playground_searches_total",
	Help: "The total number of processed searches",
})

type playgroundHelper struct {
	state    *params.SearchParameters
	onSearch func(*params.SearchParameters)
}

func (h *playgroundHelper) State() *params.SearchParameters {
	return h.state
}

func (h *playgroundHelper) Search(next *params.SearchParameters) {
	h.state = next
	if h.onSearch != nil {
		h.onSearch(next)
	}
}

// playground is a minimal single-index orchestrator driving both widgets
// against the in-memory catalog.
type playground struct {
	mu      sync.Mutex
	index   *catalogIndex
	helper  *playgroundHelper
	widgets []widget.Widget
	sink    insights.Sink

	ratingState   *ratingmenu.RenderState
	categoryState *hierarchical.RenderState
	latest        *results.Results
}

func (pg *playground) runSearch(state *params.SearchParameters) {
	noSearches.Inc()
	pg.latest = pg.index.Search(state, ratingAttribute, categorySortBy)
	for _, w := range pg.widgets {
		w.Render(&widget.RenderOptions{
			Helper:    pg.helper,
			State:     state,
			Results:   pg.latest,
			CreateURL: pg.createURL,
			Insights:  pg.sink,
		})
	}
}

func (pg *playground) searchWithUiState(uiState widget.UiState) {
	state := params.New(indexName)
	for _, w := range pg.widgets {
		state = w.GetWidgetSearchParameters(state, widget.SearchParametersOptions{UiState: uiState})
	}
	pg.helper.state = state
	pg.runSearch(state)
}

func (pg *playground) createURL(state *params.SearchParameters) string {
	uiState := widget.UiState{}
	for _, w := range pg.widgets {
		uiState = w.GetWidgetUiState(uiState, widget.UiStateOptions{SearchParameters: state})
	}
	route := urlstate.Route{UiState: uiState}
	return "/search?" + route.Encode().Encode()
}

type searchResponse struct {
	NbHits            int                 `json:"nbHits"`
	Ratings           []ratingmenu.Item   `json:"ratings"`
	Categories        []hierarchical.Item `json:"categories"`
	CanToggleShowMore bool                `json:"canToggleShowMore"`
	Url               string              `json:"url"`
}

func (pg *playground) handleSearch(w http.ResponseWriter, r *http.Request, store *statestore.RedisStore) {
	route, err := urlstate.Decode(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pg.mu.Lock()
	defer pg.mu.Unlock()
	pg.searchWithUiState(route.UiState)

	if sid := r.URL.Query().Get("sid"); sid != "" && store != nil {
		if err := store.Save(r.Context(), sid, route.UiState); err != nil {
			log.Printf("Unable to save ui state for %s: %v", sid, err)
		}
	}

	response := searchResponse{
		NbHits: pg.latest.NbHits,
		Url:    pg.createURL(pg.helper.State()),
	}
	if pg.ratingState != nil {
		response.Ratings = pg.ratingState.Items
	}
	if pg.categoryState != nil {
		response.Categories = pg.categoryState.Items
		response.CanToggleShowMore = pg.categoryState.CanToggleShowMore
	}
	writeJson(w, response)
}

func writeJson(w http.ResponseWriter, data any) {
	bytes, err := sonic.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(bytes)
}

func demoItems() []catalogItem {
	return []catalogItem{
		{Id: 1, Name: "Trail runner", Rating: 4, Category: []string{"Shoes", "Sneakers"}},
		{Id: 2, Name: "Court classic", Rating: 5, Category: []string{"Shoes", "Sneakers"}},
		{Id: 3, Name: "Chelsea boot", Rating: 3, Category: []string{"Shoes", "Boots"}},
		{Id: 4, Name: "Rain jacket", Rating: 4, Category: []string{"Clothing", "Jackets"}},
		{Id: 5, Name: "Down jacket", Rating: 5, Category: []string{"Clothing", "Jackets"}},
		{Id: 6, Name: "Linen shirt", Rating: 2, Category: []string{"Clothing", "Shirts"}},
		{Id: 7, Name: "Wool beanie", Rating: 4, Category: []string{"Accessories", "Hats"}},
		{Id: 8, Name: "Leather belt", Rating: 1, Category: []string{"Accessories", "Belts"}},
	}
}

func main() {
	idx := newCatalogIndex(separator)
	for _, item := range demoItems() {
		idx.add(item)
	}

	var sink insights.Sink = insights.LogSink{}
	if rabbitUrl != "" {
		rabbitSink, err := insights.NewRabbitSink(rabbitUrl, "playground")
		if err != nil {
			log.Fatalf("Unable to connect to rabbitmq: %v", err)
		}
		defer rabbitSink.Close()
		sink = rabbitSink
	}

	var store *statestore.RedisStore
	if redisAddr != "" {
		store = statestore.NewRedisStore(redisAddr, redisPassword, 0, 24*time.Hour)
		defer store.Close()
	}

	pg := &playground{
		index:  idx,
		helper: &playgroundHelper{},
		sink:   sink,
	}
	pg.helper.onSearch = pg.runSearch

	ratingFactory, err := ratingmenu.Connect(func(state *ratingmenu.RenderState, isFirstRender bool) {
		pg.ratingState = state
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	ratingWidget, err := ratingFactory(ratingmenu.Params{Attribute: ratingAttribute})
	if err != nil {
		log.Fatal(err)
	}

	categoryFactory, err := hierarchical.Connect(func(state *hierarchical.RenderState, isFirstRender bool) {
		pg.categoryState = state
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	categoryWidget, err := categoryFactory(hierarchical.Params{
		Attributes:    categoryAttributes,
		Separator:     separator,
		ShowMore:      true,
		ShowMoreLimit: 20,
		SortBy:        categorySortBy,
	})
	if err != nil {
		log.Fatal(err)
	}

	pg.widgets = []widget.Widget{ratingWidget, categoryWidget}

	initial := params.New(indexName)
	for _, w := range pg.widgets {
		initial = w.GetWidgetSearchParameters(initial, widget.SearchParametersOptions{})
	}
	pg.helper.state = initial
	for _, w := range pg.widgets {
		w.Init(&widget.InitOptions{
			Helper:    pg.helper,
			State:     initial,
			CreateURL: pg.createURL,
			Insights:  pg.sink,
		})
	}
	pg.runSearch(initial)

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		pg.handleSearch(w, r, store)
	})
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		sid := r.URL.Query().Get("sid")
		if sid == "" || store == nil {
			http.Error(w, "no state store configured", http.StatusNotFound)
			return
		}
		uiState, err := store.Load(r.Context(), sid)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJson(w, uiState)
	})
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Playground listening on %s", listenAddress)
	log.Fatal(http.ListenAndServe(listenAddress, mux))
}
