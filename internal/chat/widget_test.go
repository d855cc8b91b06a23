package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"studyhub/client/internal/models"
	"studyhub/client/internal/session"
)

type fakeSession struct {
	mu   sync.Mutex
	snap session.Snapshot
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) set(snap session.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

type assistCall struct {
	message string
	userID  int64
}

type fakeAssistant struct {
	mu      sync.Mutex
	calls   []assistCall
	reply   string
	err     error
	onQuery func()
}

func (f *fakeAssistant) ChatQuery(_ context.Context, message string, userID int64) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, assistCall{message: message, userID: userID})
	reply, err, hook := f.reply, f.err, f.onQuery
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return reply, err
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func authenticatedSnap() session.Snapshot {
	return session.Snapshot{
		User:  &models.User{ID: 7, FullName: "An Nguyen", Points: 120},
		Token: "tok",
	}
}

func anonymousSnap() session.Snapshot {
	return session.Snapshot{}
}

func newTestWidget(snap session.Snapshot, assist *fakeAssistant) (*Widget, *fakeSession) {
	sessions := &fakeSession{snap: snap}
	return NewWidget(sessions, assist, zerolog.Nop()), sessions
}

func TestOpenSubStateFollowsSession(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want State
	}{
		{"loading session", session.Snapshot{Loading: true}, StateAuthChecking},
		{"anonymous session", anonymousSnap(), StateUnauthenticated},
		{"authenticated session", authenticatedSnap(), StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWidget(tt.snap, &fakeAssistant{})
			if got := w.Open(); got != tt.want {
				t.Errorf("Open() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenAppendsGreetingOnlyOnce(t *testing.T) {
	w, _ := newTestWidget(authenticatedSnap(), &fakeAssistant{})

	w.Open()
	first := w.Transcript()
	if len(first) != 1 || first[0].Sender != SenderBot {
		t.Fatalf("expected single bot greeting, got %d messages", len(first))
	}

	w.Close()
	w.Open()
	if got := len(w.Transcript()); got != 1 {
		t.Errorf("greeting duplicated on reopen: %d messages", got)
	}
}

func TestCloseRetainsTranscriptHidesQuickReplies(t *testing.T) {
	assist := &fakeAssistant{reply: "ok"}
	w, _ := newTestWidget(authenticatedSnap(), assist)

	w.Open()
	w.Send(context.Background(), "hello")
	before := len(w.Transcript())

	w.Close()
	if w.State() != StateClosed {
		t.Errorf("expected closed state, got %v", w.State())
	}
	if w.QuickRepliesVisible() {
		t.Error("quick replies still visible after close")
	}
	if got := len(w.Transcript()); got != before {
		t.Errorf("transcript changed on close: %d != %d", got, before)
	}
}

func TestSendWhileAnonymousAppendsLoginPrompt(t *testing.T) {
	assist := &fakeAssistant{}
	w, _ := newTestWidget(anonymousSnap(), assist)

	w.Open()
	state := w.Send(context.Background(), "Tôi muốn hỏi về tài liệu")

	if state != StateUnauthenticated {
		t.Errorf("expected unauthenticated state, got %v", state)
	}
	if assist.callCount() != 0 {
		t.Errorf("expected zero assistant requests, got %d", assist.callCount())
	}

	transcript := w.Transcript()
	// Greeting, the user's literal text, exactly one login prompt.
	if len(transcript) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(transcript))
	}
	userMsg := transcript[1]
	if userMsg.Sender != SenderUser || userMsg.Content.Text != "Tôi muốn hỏi về tài liệu" {
		t.Errorf("user message not appended literally: %+v", userMsg)
	}
	prompts := 0
	for _, msg := range transcript {
		if msg.Content.Kind == KindLoginPrompt {
			prompts++
		}
	}
	if prompts != 1 {
		t.Errorf("expected exactly one login prompt, got %d", prompts)
	}
}

func TestSendAuthenticatedQueriesAssistant(t *testing.T) {
	assist := &fakeAssistant{reply: "Bạn có 120 điểm"}
	w, _ := newTestWidget(authenticatedSnap(), assist)

	w.Open()
	state := w.Send(context.Background(), "Xem điểm của tôi")

	if state != StateIdle {
		t.Errorf("expected idle after reply, got %v", state)
	}
	if assist.callCount() != 1 {
		t.Fatalf("expected exactly one assistant request, got %d", assist.callCount())
	}
	call := assist.calls[0]
	if call.message != "Xem điểm của tôi" || call.userID != 7 {
		t.Errorf("unexpected request payload: %+v", call)
	}

	transcript := w.Transcript()
	last := transcript[len(transcript)-1]
	if last.Sender != SenderBot || last.Content.Text != "Bạn có 120 điểm" {
		t.Errorf("bot reply not appended verbatim: %+v", last)
	}
	if !w.QuickRepliesVisible() {
		t.Error("quick replies should be re-shown after reply while signed in")
	}
}

func TestSendFailureAppendsLocalizedError(t *testing.T) {
	assist := &fakeAssistant{err: errors.New("backend down")}
	w, _ := newTestWidget(authenticatedSnap(), assist)

	w.Open()
	state := w.Send(context.Background(), "hello")

	if state != StateIdle {
		t.Errorf("expected idle after failed reply, got %v", state)
	}
	transcript := w.Transcript()
	last := transcript[len(transcript)-1]
	if last.Sender != SenderBot || last.Content.Text != msgReplyError {
		t.Errorf("expected localized error message, got %+v", last)
	}
}

func TestSessionExpiryMidFlightHidesQuickReplies(t *testing.T) {
	assist := &fakeAssistant{reply: "ok"}
	w, sessions := newTestWidget(authenticatedSnap(), assist)

	// The session expires while the request is in flight; the decision
	// must use the live state, not the submission-time snapshot.
	assist.onQuery = func() { sessions.set(anonymousSnap()) }

	w.Open()
	state := w.Send(context.Background(), "hello")

	if state != StateUnauthenticated {
		t.Errorf("expected unauthenticated after mid-flight expiry, got %v", state)
	}
	if w.QuickRepliesVisible() {
		t.Error("quick replies shown for an expired session")
	}

	// The reply still lands in arrival order.
	transcript := w.Transcript()
	last := transcript[len(transcript)-1]
	if last.Content.Text != "ok" {
		t.Errorf("expected in-flight reply appended, got %+v", last)
	}
}

func TestQuickReplyIsJustASend(t *testing.T) {
	assist := &fakeAssistant{reply: "Đây là các tài liệu mới nhất"}
	w, _ := newTestWidget(authenticatedSnap(), assist)

	w.Open()
	w.Send(context.Background(), QuickReplies[1])

	if assist.callCount() != 1 {
		t.Fatalf("expected one request, got %d", assist.callCount())
	}
	if assist.calls[0].message != "Tài liệu mới nhất" {
		t.Errorf("unexpected quick-reply payload: %q", assist.calls[0].message)
	}
}

func TestSendWhileClosedIsNoOp(t *testing.T) {
	assist := &fakeAssistant{}
	w, _ := newTestWidget(authenticatedSnap(), assist)

	if state := w.Send(context.Background(), "hello"); state != StateClosed {
		t.Errorf("expected closed state, got %v", state)
	}
	if assist.callCount() != 0 {
		t.Errorf("closed widget issued a request")
	}
	if len(w.Transcript()) != 0 {
		t.Errorf("closed widget appended to transcript")
	}
}

func TestConcurrentSendsSettleToIdle(t *testing.T) {
	release := make(chan struct{})
	assist := &fakeAssistant{reply: "ok"}
	assist.onQuery = func() { <-release }
	w, _ := newTestWidget(authenticatedSnap(), assist)

	w.Open()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Send(context.Background(), "hi")
		}()
	}

	// Both requests in flight concurrently.
	close(release)
	wg.Wait()

	if w.State() != StateIdle {
		t.Errorf("expected idle after all replies, got %v", w.State())
	}
	if assist.callCount() != 2 {
		t.Errorf("expected 2 requests, got %d", assist.callCount())
	}
	// Greeting + 2 user messages + 2 replies.
	if got := len(w.Transcript()); got != 5 {
		t.Errorf("expected 5 messages, got %d", got)
	}
}
