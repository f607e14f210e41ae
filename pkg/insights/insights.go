package insights

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MethodClickedFilters = "clickedFilters"
	EventTypeClick       = "click"
	EventNameFilter      = "Filter Applied"
)

// Event is the analytics payload sent when a user applies a new filter.
type Event struct {
	EventId        string   `json:"eventId"`
	InsightsMethod string   `json:"insightsMethod"`
	EventType      string   `json:"eventType"`
	EventName      string   `json:"eventName"`
	WidgetType     string   `json:"widgetType"`
	Index          string   `json:"index"`
	Filters        []string `json:"filters"`
}

// Sink delivers events somewhere. The widgets only decide when an event
// fires, delivery is someone else's problem.
type Sink interface {
	Send(event *Event)
}

var eventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "slaskwidgets_insights_events_total",
	Help: "The total number of emitted insights events",
}, []string{"widget"})

// FacetEventSender is the shared click-filter emission policy. An event
// fires only when the clicked value is not already the active refinement:
// toggling off or re-clicking never emits. IsRefined reads live widget
// state so the decision always reflects the current refinement.
type FacetEventSender struct {
	Sink       Sink
	Index      string
	WidgetType string
	IsRefined  func(value string) bool
	FilterExpr func(value string) string
}

func (s *FacetEventSender) Send(eventType, value string) {
	if eventType != EventTypeClick || s.Sink == nil {
		return
	}
	if s.IsRefined != nil && s.IsRefined(value) {
		return
	}
	eventsSent.WithLabelValues(s.WidgetType).Inc()
	s.Sink.Send(&Event{
		EventId:        uuid.NewString(),
		InsightsMethod: MethodClickedFilters,
		EventType:      eventType,
		EventName:      EventNameFilter,
		WidgetType:     s.WidgetType,
		Index:          s.Index,
		Filters:        []string{s.FilterExpr(value)},
	})
}
