package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"edu_progress/internal/middleware"
	sessionUC "edu_progress/internal/usecase/session"
)

const (
	FrameSessionChanged  = "session_changed"
	FrameSessionExpiring = "session_expiring"

	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is one message pushed over /session/events.
type Frame struct {
	Type          string `json:"type"`
	Authenticated *bool  `json:"authenticated,omitempty"`
	RemainingMs   *int64 `json:"remainingMs,omitempty"`
}

type eventStream struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *eventStream) send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(f)
}

func changedFrame(authenticated bool) Frame {
	return Frame{Type: FrameSessionChanged, Authenticated: &authenticated}
}

// expiringFrame keeps remainingMs 0 reserved for an expired session.
func expiringFrame(remaining time.Duration) Frame {
	ms := remaining.Milliseconds()
	if remaining > 0 && ms == 0 {
		ms = 1
	}
	return Frame{Type: FrameSessionExpiring, RemainingMs: &ms}
}

// Events streams session changes of the calling client and runs an
// expiration watcher for it while the socket is open. A final
// session_expiring frame with remainingMs 0 announces expiry.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.ClientIDFromContext(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Events: websocket upgrade failed: ", err)
		return
	}
	defer conn.Close()

	stream := &eventStream{conn: conn}
	m := h.sessions.ForClient(clientID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := sessionUC.NewWatcher(m, h.cfg.WatcherInterval, h.warning(), h.log)
	watcher.OnTick(func(remaining time.Duration) {
		if err := stream.send(expiringFrame(remaining)); err != nil {
			h.log.Warnf("Events: send to %s failed: %v", clientID, err)
		}
	})

	unsubscribe := h.sessions.Events().Subscribe(func(e sessionUC.Event) {
		if e.Scope != clientID {
			return
		}
		if err := stream.send(changedFrame(e.Authenticated)); err != nil {
			h.log.Warnf("Events: send to %s failed: %v", clientID, err)
		}
		if e.Authenticated {
			watcher.Start(ctx)
		}
	})
	defer watcher.Stop()
	defer unsubscribe()

	_, authenticated := m.GetSession(ctx)
	if err := stream.send(changedFrame(authenticated)); err != nil {
		return
	}
	if authenticated {
		watcher.Start(ctx)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
