package manager

import (
	"strings"

	"github.com/rs/zerolog"
)

// LogPublisher forwards manager events to a structured logger.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Info()
	if strings.Contains(e.Name, "error") || strings.Contains(e.Name, "fail") || strings.Contains(e.Name, "timeout") {
		ev = p.log.Warn()
	}
	ev = ev.Str("event", e.Name)
	if e.ModelID != "" {
		ev = ev.Str("model", e.ModelID)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("manager event")
}
