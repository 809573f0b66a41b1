package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"go-currency-swap/session"
	"go-currency-swap/swap"
)

const writeWait = 5 * time.Second

// stream upgrades to a websocket and pushes the session view after every
// change, starting with the current one. Only the latest pending view is
// kept for a slow client; each carries its version.
func (s *Server) stream(rw http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		s.Logger.Log("msg", "websocket upgrade failed", "session", sess.ID, "err", err)
		return
	}
	defer conn.Close()

	updates := make(chan swap.Snapshot, 1)
	unsubscribe := sess.Machine.Subscribe(func(snap swap.Snapshot) {
		// notifications are serialised, so after draining the send cannot block
		select {
		case <-updates:
		default:
		}
		updates <- snap
	})
	defer unsubscribe()

	// the client sends nothing; reading detects when it goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(snap swap.Snapshot) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(s.view(sess, snap))
	}

	if err := write(sess.Machine.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case snap := <-updates:
			if err := write(snap); err != nil {
				s.Logger.Log("msg", "websocket write failed", "session", sess.ID, "err", err)
				return
			}
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		}
	}
}
