package insights

import (
	"log"

	"github.com/bytedance/sonic"
)

// LogSink writes events to the process log, useful for development.
type LogSink struct{}

func (LogSink) Send(event *Event) {
	data, err := sonic.Marshal(event)
	if err != nil {
		log.Printf("Unable to marshal insights event: %v", err)
		return
	}
	log.Printf("insights: %s", data)
}

// NoopSink swallows events, the default when no sink is configured.
type NoopSink struct{}

func (NoopSink) Send(*Event) {}
