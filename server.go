package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"scene-studio/entities/scene"
	"scene-studio/tools/logger"
)

const (
	minSnapshotSize = 64
	maxSnapshotSize = 2048
)

// Server exposes the studio over HTTP: a websocket chat channel, a
// server-side snapshot endpoint, and a liveness probe.
type Server struct {
	studio *Studio
	log    *logger.Logger
	mux    *http.ServeMux

	upgrader websocket.Upgrader
}

// NewServer wires the HTTP routes over a studio
func NewServer(studio *Studio, log *logger.Logger) *Server {
	s := &Server{
		studio: studio,
		log:    log.WithPrefix("http"),
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The studio is a local tool; the browser UI may be served
			// from a different port.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleWS upgrades the connection and runs one session for its lifetime.
// The first outbound message carries the session id and initial scene.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := s.studio.NewSession()
	defer s.studio.CloseSession(sess.ID)

	doc := sess.Document()
	if err := conn.WriteJSON(ChatOutbound{Type: "scene", Text: sess.ID, Scene: &doc}); err != nil {
		return
	}

	for {
		var in ChatInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed: %v", err)
			}
			return
		}
		if in.Type != "chat" || in.Text == "" {
			conn.WriteJSON(ChatOutbound{Type: "error", Error: "expected {\"type\":\"chat\",\"text\":...}"})
			continue
		}

		// Chat runs synchronously in the read loop, so callback writes
		// never interleave.
		resp, err := s.studio.Chat(r.Context(), sess, in.Text, ChatCallbacks{
			OnFragment: func(text string) {
				conn.WriteJSON(ChatOutbound{Type: "fragment", Text: text})
			},
			OnCommands: func(cmds []scene.Command) {
				conn.WriteJSON(ChatOutbound{Type: "commands", Commands: cmds})
			},
			OnScene: func(doc scene.Document) {
				conn.WriteJSON(ChatOutbound{Type: "scene", Scene: &doc})
			},
		})
		if err != nil {
			s.log.Error("chat failed: %v", err)
			conn.WriteJSON(ChatOutbound{Type: "error", Error: err.Error()})
			continue
		}

		conn.WriteJSON(ChatOutbound{
			Type:         "done",
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
		})
	}
}

// handleSnapshot renders the session's current scene as a WebP image
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, ok := s.studio.Session(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	size := s.studio.config.SnapshotSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "bad size", http.StatusBadRequest)
			return
		}
		size = n
	}
	if size < minSnapshotSize {
		size = minSnapshotSize
	}
	if size > maxSnapshotSize {
		size = maxSnapshotSize
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	if err := sess.SnapshotWebP(w, size); err != nil {
		s.log.Error("snapshot failed: %v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
