// File: internal/usecase/classifier.go
package usecase

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"reage-orchestrator/internal/domain/model"
	"reage-orchestrator/internal/infra/metrics"
)

// Raw status codes reported by the remote service. They are resolved into
// event variants here and never travel past this file.
const (
	statusSuccess = 3
	statusFailure = 4
)

// pushData is the wire shape of one inbound push message's payload.
type pushData struct {
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
	URL     string `json:"url"`
	TaskID  string `json:"task_id"`
}

type pushMessage struct {
	Data *pushData `json:"data"`
}

// Classifier turns raw push messages into typed status events and validates
// them against the active job's identity.
type Classifier struct {
	log *zerolog.Logger
}

func NewClassifier(log *zerolog.Logger) *Classifier {
	return &Classifier{log: log}
}

// Classify parses raw and reports whether the resulting event should be
// applied to active. Malformed messages, messages with no active job, and
// messages correlated to a superseded job all return false; none of them is
// ever fatal to the channel.
func (c *Classifier) Classify(raw []byte, active *model.JobContext) (model.StatusEvent, bool) {
	var msg pushMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Data == nil {
		c.log.Debug().Msg("dropping malformed push message")
		metrics.IncChannelMessage("malformed")
		return model.StatusEvent{}, false
	}
	d := msg.Data

	var ev model.StatusEvent
	switch {
	case d.Type == "error":
		ev = model.StatusEvent{Kind: model.EventError, Message: d.Message, TaskID: d.TaskID}
	case d.Status == statusSuccess:
		if d.URL == "" {
			c.log.Debug().Msg("dropping success message without result url")
			metrics.IncChannelMessage("malformed")
			return model.StatusEvent{}, false
		}
		ev = model.StatusEvent{Kind: model.EventSuccess, Message: d.Message, ResultURL: d.URL, TaskID: d.TaskID}
	case d.Status == statusFailure:
		ev = model.StatusEvent{Kind: model.EventError, Message: d.Message, TaskID: d.TaskID}
	default:
		ev = model.StatusEvent{Kind: model.EventProgress, Message: d.Message, TaskID: d.TaskID}
	}

	if active == nil || active.State.Terminal() {
		c.log.Debug().Str("event", string(ev.Kind)).Msg("dropping push message with no active job")
		metrics.IncChannelMessage("dropped")
		return ev, false
	}
	if ev.TaskID != "" && ev.TaskID != active.ID {
		c.log.Debug().
			Str("task_id", ev.TaskID).
			Str("active_job", active.ID).
			Msg("dropping push message for superseded job")
		metrics.IncChannelMessage("dropped")
		return ev, false
	}
	return ev, true
}
