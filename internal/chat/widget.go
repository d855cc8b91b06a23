// Package chat implements the assistant widget's state machine: open and
// closed, an in-memory transcript, pending replies, and quick-reply
// visibility, all gated by the live session.
package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"studyhub/client/internal/session"
)

type State string

const (
	StateClosed          State = "closed"
	StateUnauthenticated State = "open-unauthenticated"
	StateAuthChecking    State = "open-auth-checking"
	StateIdle            State = "open-idle"
	StateAwaitingReply   State = "open-awaiting-reply"
)

// SessionSource is re-read at every decision point; the widget never holds
// a session snapshot across an await.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// Assistant is implemented by apiclient.Client.
type Assistant interface {
	ChatQuery(ctx context.Context, message string, userID int64) (string, error)
}

type Widget struct {
	sessions SessionSource
	assist   Assistant
	log      zerolog.Logger

	mu           sync.Mutex
	state        State
	transcript   []Message
	quickReplies bool
	pending      int
}

func NewWidget(sessions SessionSource, assist Assistant, log zerolog.Logger) *Widget {
	return &Widget{
		sessions: sessions,
		assist:   assist,
		log:      log,
		state:    StateClosed,
	}
}

// Open toggles the widget open. The sub-state comes from the live session
// and the greeting is appended only on a still-empty transcript.
func (w *Widget) Open() State {
	snap := w.sessions.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateClosed {
		return w.state
	}

	w.state = openStateFor(snap)
	if len(w.transcript) == 0 {
		w.transcript = append(w.transcript, newMessage(SenderBot, TextContent(msgGreeting)))
	}
	w.quickReplies = w.state == StateIdle
	return w.state
}

// Close retains the transcript for the rest of the page lifetime but
// resets quick-reply visibility.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateClosed
	w.quickReplies = false
}

// Send submits a message, typed or quick-reply. The user's text is always
// appended first so they see what they tried to send; whether a request
// goes out depends on the session at this exact moment.
func (w *Widget) Send(ctx context.Context, text string) State {
	snap := w.sessions.Snapshot()

	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return StateClosed
	}

	w.transcript = append(w.transcript, newMessage(SenderUser, TextContent(text)))

	if snap.User == nil {
		// No network call: a login prompt takes the reply's place.
		w.transcript = append(w.transcript, newMessage(SenderBot, LoginPromptContent()))
		w.state = StateUnauthenticated
		w.quickReplies = false
		w.mu.Unlock()
		return StateUnauthenticated
	}

	w.state = StateAwaitingReply
	w.quickReplies = false
	w.pending++
	userID := snap.User.ID
	w.mu.Unlock()

	reply, err := w.assist.ChatQuery(ctx, text, userID)

	// Re-read the live session: it may have expired while the request was
	// in flight, and the quick-reply decision must not use a stale value.
	live := w.sessions.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.log.Warn().Err(err).Msg("assistant query failed")
		w.transcript = append(w.transcript, newMessage(SenderBot, TextContent(msgReplyError)))
	} else {
		w.transcript = append(w.transcript, newMessage(SenderBot, TextContent(reply)))
	}

	w.pending--
	if w.state == StateClosed {
		return StateClosed
	}
	if w.pending > 0 {
		return w.state
	}

	if live.User != nil {
		w.state = StateIdle
		w.quickReplies = true
	} else {
		w.state = StateUnauthenticated
		w.quickReplies = false
	}
	return w.state
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Transcript returns a copy of the message history.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.transcript...)
}

// QuickRepliesVisible reports whether the canned suggestions are shown.
func (w *Widget) QuickRepliesVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quickReplies
}

func openStateFor(snap session.Snapshot) State {
	switch {
	case snap.Loading:
		return StateAuthChecking
	case snap.User == nil:
		return StateUnauthenticated
	default:
		return StateIdle
	}
}
