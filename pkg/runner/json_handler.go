package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Message is one NDJSON line written by the JSONHandler.
type Message struct {
	Type          string                   `json:"type"`
	NodeID        string                   `json:"node_id,omitempty"`
	Speaker       string                   `json:"speaker,omitempty"`
	Text          string                   `json:"text,omitempty"`
	Choices       []domain.PresentedChoice `json:"choices,omitempty"`
	Kind          string                   `json:"kind,omitempty"`
	Interruptible bool                     `json:"interruptible,omitempty"`
	Payload       any                      `json:"payload,omitempty"`
}

// Reply is the structured form of a JSON input line. Plain strings are
// accepted too and parsed as text commands.
type Reply struct {
	Action    string  `json:"action,omitempty"` // confirm, quit
	Choice    *int    `json:"choice,omitempty"` // option id
	Interrupt *string `json:"interrupt,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Stage directions (transitions, camera, ...) are emitted as messages too, so a
// headless host can render everything itself.
type JSONHandler struct {
	Reader *bufio.Reader

	mu      sync.Mutex
	encoder *json.Encoder

	inputChan chan inputResult
	startOnce sync.Once
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult, DefaultInputBufferSize)
		go func() {
			defer close(h.inputChan)
			for {
				text, err := h.Reader.ReadString('\n')
				if strings.TrimSpace(text) != "" {
					h.inputChan <- inputResult{text: text}
				}
				if err != nil {
					if err != io.EOF {
						h.inputChan <- inputResult{err: err}
					}
					return
				}
			}
		}()
	})
}

func (h *JSONHandler) emit(m Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(m)
}

func (h *JSONHandler) ShowText(ctx context.Context, line domain.Line) error {
	return h.emit(Message{Type: "text", NodeID: line.NodeID, Speaker: line.Speaker, Text: line.Text})
}

func (h *JSONHandler) ShowChoices(ctx context.Context, nodeID string, choices []domain.PresentedChoice) error {
	return h.emit(Message{Type: "choices", NodeID: nodeID, Choices: choices})
}

func (h *JSONHandler) Raise(ctx context.Context, req domain.EventRequest) {
	_ = h.emit(Message{Type: "event", Payload: req})
}

func (h *JSONHandler) PlayTransition(ctx context.Context, spec domain.TransitionSpec) error {
	return h.emit(Message{Type: string(domain.KindTransition), Payload: spec})
}

func (h *JSONHandler) PlayCharacterAction(ctx context.Context, action domain.CharacterAction) error {
	return h.emit(Message{Type: string(domain.KindCharacterAction), Payload: action})
}

func (h *JSONHandler) SetBackground(ctx context.Context, spec domain.BackgroundSpec) error {
	return h.emit(Message{Type: string(domain.KindBackground), Payload: spec})
}

func (h *JSONHandler) PlayCameraAction(ctx context.Context, action domain.CameraAction) error {
	return h.emit(Message{Type: string(domain.KindCamera), Payload: action})
}

func (h *JSONHandler) PlayScreenEffect(ctx context.Context, effect domain.ScreenEffect) error {
	return h.emit(Message{Type: string(domain.KindScreenEffect), Payload: effect})
}

// Input announces what the run waits for and reads one reply line.
func (h *JSONHandler) Input(ctx context.Context, pending colloquy.Suspension) (string, error) {
	if err := h.emit(Message{
		Type:          "waiting",
		NodeID:        pending.NodeID,
		Kind:          pending.Kind.String(),
		Interruptible: pending.Interruptible,
	}); err != nil {
		return "", err
	}

	h.initPump()

	var text string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		text = strings.TrimSpace(res.text)
	}

	clean, err := SanitizeInput(text)
	if err != nil {
		return "", err
	}
	return decodeReply(clean)
}

// decodeReply maps a JSON reply onto the text command syntax.
func decodeReply(line string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return s, nil
	}

	var r Reply
	if err := json.Unmarshal([]byte(line), &r); err != nil {
		// Fallback: plain text command.
		return line, nil
	}
	switch {
	case r.Choice != nil:
		return fmt.Sprintf("#%d", *r.Choice), nil
	case r.Interrupt != nil:
		return "!" + *r.Interrupt, nil
	case r.Action == "quit":
		return "quit", nil
	case r.Action == "confirm", r.Action == "":
		return "next", nil
	}
	return "", fmt.Errorf("%w: action %q", ErrUnknownCommand, r.Action)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(Message{Type: "system", Text: msg})
}

// Collaborators wires the handler as every outward interface.
func (h *JSONHandler) Collaborators() domain.Collaborators {
	return domain.Collaborators{
		Presenter:   h,
		Events:      h,
		Transitions: h,
		Characters:  h,
		Backgrounds: h,
		Camera:      h,
		Screen:      h,
	}
}
