// Package sse decodes the chat-completion event stream relayed by /chat into
// incremental assistant text.
package sse

import (
	"bytes"
	"encoding/json"
	"strings"

	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

type State int

const (
	// AwaitingLine: no partial payload is held.
	AwaitingLine State = iota
	// HaveLine: a data payload failed to parse and waits for the next
	// non-comment, non-blank line to complete it.
	HaveLine
)

func (s State) String() string {
	if s == HaveLine {
		return "HaveLine"
	}
	return "AwaitingLine"
}

// Event is one decoded delta. It is never persisted.
type Event struct {
	Delta string
}

type chunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder splits fed bytes into lines and extracts content deltas. The result
// only depends on the concatenated bytes, never on how they were split into Feed calls.
type Decoder struct {
	pending []byte
	state   State
	held    string
	done    bool
	text    strings.Builder
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) State() State { return d.state }

// Done reports whether the [DONE] sentinel was seen.
func (d *Decoder) Done() bool { return d.done }

// Text is the concatenation of every delta so far.
func (d *Decoder) Text() string { return d.text.String() }

// Pending is the number of buffered bytes not yet terminated by a newline.
func (d *Decoder) Pending() int { return len(d.pending) }

// Feed buffers b and returns the deltas completed by it, in arrival order.
func (d *Decoder) Feed(b []byte) []Event {
	d.pending = append(d.pending, b...)

	var events []Event
	for {
		idx := bytes.IndexByte(d.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(d.pending[:idx])
		d.pending = d.pending[idx+1:]
		line = strings.TrimSuffix(line, "\r")

		if ev, ok := d.line(line); ok {
			events = append(events, ev)
		}
	}
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return events
}

func (d *Decoder) line(line string) (Event, bool) {
	blank := strings.TrimSpace(line) == ""
	if d.state == HaveLine && (blank || strings.HasPrefix(line, ":")) {
		// keep-alives between the two halves leave the held payload in place
		return Event{}, false
	}
	if d.state == HaveLine {
		joined := d.held + line
		d.state, d.held = AwaitingLine, ""
		if ev, ok, parsed := d.payload(strings.TrimSpace(joined)); parsed {
			return ev, ok
		}
		logging.AppLogger.Debug("dropping undecodable stream line", zap.Int("bytes", len(joined)))
	}

	if d.done {
		return Event{}, false
	}
	if blank || strings.HasPrefix(line, ":") {
		return Event{}, false
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return Event{}, false
	}

	raw := strings.TrimLeft(line[len(dataPrefix):], " \t")
	payload := strings.TrimSpace(raw)
	if payload == doneSentinel {
		d.done = true
		return Event{}, false
	}

	ev, ok, parsed := d.payload(payload)
	if !parsed {
		d.state, d.held = HaveLine, raw
		return Event{}, false
	}
	return ev, ok
}

// payload decodes one JSON chunk. parsed=false means the text is not valid JSON.
func (d *Decoder) payload(s string) (ev Event, ok bool, parsed bool) {
	if !json.Valid([]byte(s)) {
		return Event{}, false, false
	}
	var c chunk
	// valid JSON of another shape carries no delta
	if err := json.Unmarshal([]byte(s), &c); err != nil || len(c.Choices) == 0 {
		return Event{}, false, true
	}
	content := c.Choices[0].Delta.Content
	if content == nil || *content == "" {
		return Event{}, false, true
	}
	d.text.WriteString(*content)
	return Event{Delta: *content}, true, true
}
