package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	// Speaker styles speaker names; nil prints them unchanged.
	Speaker func(string) string

	mu        sync.Mutex
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithSpeakerStyle configures how speaker names are decorated.
func WithSpeakerStyle(style func(string) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Speaker = style
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts a single reader goroutine. Reads on a terminal cannot be
// cancelled, so Input selects on the channel instead of blocking in Read.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult, DefaultInputBufferSize)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.Writer, format, args...)
}

// ShowText implements domain.Presenter.
func (h *TextHandler) ShowText(ctx context.Context, line domain.Line) error {
	text := line.Text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = strings.TrimSpace(rendered)
		}
	}
	if line.Speaker == "" {
		h.printf("%s\n", text)
		return nil
	}
	speaker := line.Speaker
	if h.Speaker != nil {
		speaker = h.Speaker(speaker)
	}
	h.printf("%s: %s\n", speaker, text)
	return nil
}

// ShowChoices implements domain.Presenter. Choices are numbered by position.
func (h *TextHandler) ShowChoices(ctx context.Context, nodeID string, choices []domain.PresentedChoice) error {
	var sb strings.Builder
	for i, c := range choices {
		fmt.Fprintf(&sb, "  %d) %s\n", i+1, c.Text)
	}
	h.printf("%s", sb.String())
	return nil
}

// Raise implements domain.EventBus by announcing the event.
func (h *TextHandler) Raise(ctx context.Context, req domain.EventRequest) {
	h.printf("[%s]\n", req.Name)
}

func (h *TextHandler) Input(ctx context.Context, pending colloquy.Suspension) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			h.printf("> ")
		}

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
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				h.printf("Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.printf(">>> %s\n", msg)
	return nil
}

// Collaborators wires the handler as presenter and event bus.
func (h *TextHandler) Collaborators() domain.Collaborators {
	return domain.Collaborators{Presenter: h, Events: h}
}
