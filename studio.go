package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scene-studio/entities/scene"
	"scene-studio/entities/stage"
	"scene-studio/tools/extract"
	"scene-studio/tools/llm"
	"scene-studio/tools/logger"
	"scene-studio/tools/render"
)

// Studio orchestrates chat sessions that build 3D scenes
type Studio struct {
	config StudioConfig
	client llm.Client
	log    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Session is one conversation with its own scene document and live stage
type Session struct {
	ID string

	mu       sync.Mutex
	store    *scene.Store
	stg      *stage.Stage
	engine   *stage.SoftEngine
	history  []llm.Message
	lastStep time.Time
	super    int
	log      *logger.Logger
}

// NewStudio creates a new scene studio
func NewStudio(config StudioConfig) (*Studio, error) {
	// Set defaults
	if config.Model == "" {
		config.Model = "claude-sonnet-4-5"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}
	if config.SnapshotSize == 0 {
		config.SnapshotSize = 512
	}
	if config.Supersample == 0 {
		config.Supersample = 2
	}

	// Validate
	if config.AnthropicKey == "" && config.LocalURL == "" {
		return nil, fmt.Errorf("Anthropic API key or local endpoint is required")
	}

	// Initialize logger
	logLevel := logger.LevelInfo
	if config.VerboseLogging {
		logLevel = logger.LevelDebug
	}
	log := logger.New(os.Stdout, logLevel, "studio")

	// Initialize LLM client
	var client llm.Client
	if config.LocalURL != "" {
		client = llm.NewLocalClient(config.LocalURL, config.Model)
	} else {
		client = llm.NewAnthropicClient(config.AnthropicKey, config.Model)
	}

	return &Studio{
		config:   config,
		client:   client,
		log:      log,
		sessions: make(map[string]*Session),
	}, nil
}

// NewSession registers a fresh session starting from the default scene
func (s *Studio) NewSession() *Session {
	id := uuid.NewString()
	sess := &Session{
		ID:       id,
		store:    scene.NewStore(),
		engine:   stage.NewSoftEngine(),
		lastStep: time.Now(),
		super:    s.config.Supersample,
		log:      s.log.WithPrefix("session " + id[:8]),
	}
	sess.stg = stage.New(sess.engine, func(err error) {
		sess.log.Error("stage: %v", err)
	})
	sess.stg.Sync(sess.store.Document())

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info("session %s opened", id[:8])
	return sess
}

// Session looks up a session by id
func (s *Studio) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// CloseSession drops a session from the registry
func (s *Studio) CloseSession(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.log.Info("session %s closed", id[:8])
	}
}

// Chat runs one streamed conversation turn. Every model fragment goes to the
// fragment callback as chat text and through the command extractor; each
// batch of extracted commands is applied to the document and reconciled onto
// the stage before the next fragment arrives. A failed stream leaves the
// document at its last consistent state.
func (s *Studio) Chat(ctx context.Context, sess *Session, userText string, cb ChatCallbacks) (*llm.Response, error) {
	done := s.log.Step("chat turn")
	defer done()

	sess.mu.Lock()
	messages := append(append([]llm.Message{}, sess.history...), llm.Message{
		Role:    "user",
		Content: userText,
	})
	system := ScenePrompt + sceneContext(sess.store.Document())
	sess.mu.Unlock()

	ex := extract.New()
	opts := &llm.RequestOptions{MaxTokens: s.config.MaxTokens}
	total := 0

	resp, err := s.client.Stream(ctx, system, messages, opts, func(text string) {
		if cb.OnFragment != nil {
			cb.OnFragment(text)
		}

		raws := ex.AddChunk(text)
		if len(raws) == 0 {
			return
		}
		cmds := scene.ParseCommands(raws)
		if len(cmds) == 0 {
			return
		}
		total += len(cmds)

		sess.mu.Lock()
		sess.store.ApplyAll(cmds)
		doc := sess.store.Document()
		sess.stg.Sync(doc)
		sess.mu.Unlock()

		if cb.OnCommands != nil {
			cb.OnCommands(cmds)
		}
		if cb.OnScene != nil {
			cb.OnScene(doc)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("chat stream failed: %w", err)
	}

	s.log.Tokens(resp.InputTokens, resp.OutputTokens)
	s.log.Commands(total)
	if resp.WasTruncated() {
		s.log.Warn("response hit the token limit; scene may be incomplete")
	}

	sess.mu.Lock()
	sess.history = append(sess.history,
		llm.Message{Role: "user", Content: userText},
		llm.Message{Role: "assistant", Content: resp.Content},
	)
	sess.mu.Unlock()

	return resp, nil
}

// Document returns the session's current scene snapshot
func (sess *Session) Document() scene.Document {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.store.Document()
}

// SnapshotWebP advances the session's animations by wall time and writes a
// rendered WebP frame
func (sess *Session) SnapshotWebP(w io.Writer, size int) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := time.Now()
	dt := float32(now.Sub(sess.lastStep).Seconds())
	sess.lastStep = now
	if dt > 0 {
		sess.stg.Step(dt)
	}

	start := time.Now()
	img := sess.engine.Render(sess.stg, size, sess.super)
	if err := render.EncodeWebP(w, img); err != nil {
		return fmt.Errorf("snapshot encode failed: %w", err)
	}
	sess.log.Snapshot(sess.ID[:8], size, time.Since(start))
	return nil
}

// sceneContext summarizes the live document so multi-turn edits can refer
// to existing ids
func sceneContext(doc scene.Document) string {
	out := "\n## Current Scene\n\nObjects:\n"
	if len(doc.Objects) == 0 {
		out += "  (none)\n"
	}
	for _, obj := range sortedObjects(doc) {
		kind := "?"
		if obj.Geometry != nil {
			kind = string(obj.Geometry.Type)
		}
		out += fmt.Sprintf("  - %s (%s)\n", obj.ID, kind)
	}
	out += "Lights:\n"
	if len(doc.Lights) == 0 {
		out += "  (none)\n"
	}
	for _, l := range sortedLights(doc) {
		out += fmt.Sprintf("  - %s (%s)\n", l.ID, l.Type)
	}
	return out
}

func sortedObjects(doc scene.Document) []scene.Object {
	out := make([]scene.Object, 0, len(doc.Objects))
	for _, o := range doc.Objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedLights(doc scene.Document) []scene.Light {
	out := make([]scene.Light, 0, len(doc.Lights))
	for _, l := range doc.Lights {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
