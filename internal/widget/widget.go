// Package widget implements the chat widget: one request/response cycle per
// user send, rendered into an injected transcript.
//
// A cycle is split in three steps so that callers owning a UI loop can keep
// every transcript mutation on their own goroutine:
//
//	ex, err := w.Begin(input)   // mutates transcript, returns placeholder handle
//	res := ex.Fetch(ctx)        // network only, safe anywhere
//	w.Finish(ex, res)           // replaces the placeholder with the outcome
//
// Submit runs all three in sequence.
package widget

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// Input is the text field the widget reads from and clears
type Input interface {
	Value() string
	SetValue(string)
}

// Transcript is the scrolling message container
type Transcript interface {
	RemoveWelcome() bool
	Append(models.Message) models.Handle
	Remove(models.Handle) bool
	ScrollToBottom()
}

// Client sends one message and returns the reply text
type Client interface {
	Chat(ctx context.Context, message string) (string, error)
}

// KeyEnter is the only key the widget reacts to
const KeyEnter = "enter"

// Widget orchestrates request cycles against one input and one transcript
type Widget struct {
	input      Input
	transcript Transcript
	client     Client
	logger     *zap.Logger

	maxInFlight int64
	slots       *semaphore.Weighted
	inFlight    atomic.Int64

	// mu keeps the steps of Begin and Finish contiguous in the transcript
	mu          sync.Mutex
	welcomeDone bool
}

// Option configures a Widget
type Option func(*Widget)

// WithMaxInFlight sets how many exchanges may be pending at once (default 1).
// Values below 1 are treated as 1.
func WithMaxInFlight(n int) Option {
	return func(w *Widget) {
		w.maxInFlight = int64(max(n, 1))
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// New creates a widget bound to the given collaborators
func New(input Input, transcript Transcript, client Client, opts ...Option) *Widget {
	w := &Widget{
		input:       input,
		transcript:  transcript,
		client:      client,
		logger:      zap.NewNop(),
		maxInFlight: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.slots = semaphore.NewWeighted(w.maxInFlight)
	return w
}

// Exchange is one pending request cycle
type Exchange struct {
	message     string
	placeholder models.Handle
	client      Client
	finished    atomic.Bool
}

// Message returns the trimmed text that was sent
func (e *Exchange) Message() string {
	return e.message
}

// Placeholder returns the handle of this exchange's loading bubble
func (e *Exchange) Placeholder() models.Handle {
	return e.placeholder
}

// Fetch performs the request. It does not touch the transcript.
func (e *Exchange) Fetch(ctx context.Context) Result {
	reply, err := e.client.Chat(ctx, e.message)
	return Result{Reply: reply, Err: err}
}

// Result is the outcome of a request
type Result struct {
	Reply string
	Err   error
}

// OK reports whether the request produced a reply
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns what the assistant bubble shows for this result
func (r Result) Text() string {
	switch {
	case r.Err == nil:
		return r.Reply
	case apierrors.IsInvalidResponse(r.Err):
		return models.InvalidReplyText
	default:
		return models.ConnectionErrorText
	}
}

// Begin validates raw and, when it is sendable, renders the user bubble and
// a loading placeholder. It returns ErrEmptyMessage for blank input and
// ErrBusy when the in-flight limit is reached; in both cases nothing changes.
func (w *Widget) Begin(raw string) (*Exchange, error) {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return nil, apierrors.ErrEmptyMessage
	}
	if !w.slots.TryAcquire(1) {
		w.logger.Debug("send rejected, request in flight", zap.Int64("in_flight", w.inFlight.Load()))
		return nil, apierrors.ErrBusy
	}
	w.inFlight.Add(1)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.input.SetValue("")
	if !w.welcomeDone {
		w.welcomeDone = true
		w.transcript.RemoveWelcome()
	}
	w.transcript.Append(models.UserMessage(msg))
	w.transcript.ScrollToBottom()
	placeholder := w.transcript.Append(models.PlaceholderMessage())
	w.transcript.ScrollToBottom()

	w.logger.Info("message sent", zap.Int("length", len(msg)), zap.Uint64("placeholder", uint64(placeholder)))

	return &Exchange{
		message:     msg,
		placeholder: placeholder,
		client:      w.client,
	}, nil
}

// Finish replaces the exchange's placeholder with the reply or an error
// bubble and frees its in-flight slot. It returns the handle of the new
// bubble. Calling Finish twice for the same exchange is a no-op.
func (w *Widget) Finish(ex *Exchange, res Result) models.Handle {
	if ex == nil || !ex.finished.CompareAndSwap(false, true) {
		return 0
	}
	defer func() {
		w.inFlight.Add(-1)
		w.slots.Release(1)
	}()

	if res.Err != nil {
		w.logger.Warn("request cycle failed",
			zap.Error(res.Err),
			zap.Int("status", apierrors.GetHTTPStatus(res.Err)))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.transcript.Remove(ex.placeholder)
	h := w.transcript.Append(models.AssistantMessage(res.Text()))
	w.transcript.ScrollToBottom()
	return h
}

// Complete fetches the exchange's reply and finishes it
func (w *Widget) Complete(ctx context.Context, ex *Exchange) Result {
	res := ex.Fetch(ctx)
	w.Finish(ex, res)
	return res
}

// Submit runs one full cycle for raw and blocks until it settles.
// The returned error only reports why nothing was sent; request failures
// are rendered into the transcript and reported through Result.
func (w *Widget) Submit(ctx context.Context, raw string) (Result, error) {
	ex, err := w.Begin(raw)
	if err != nil {
		return Result{}, err
	}
	return w.Complete(ctx, ex), nil
}

// KeyPress submits the input's current value on Enter and ignores other keys
func (w *Widget) KeyPress(ctx context.Context, key string) (Result, error) {
	if key != KeyEnter {
		return Result{}, nil
	}
	return w.Submit(ctx, w.input.Value())
}

// InFlight returns the number of unsettled exchanges
func (w *Widget) InFlight() int {
	return int(w.inFlight.Load())
}
