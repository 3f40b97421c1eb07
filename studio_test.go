package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/entities/scene"
	"scene-studio/tools/llm"
)

// scriptClient replays canned responses in tiny fragments, recording what
// it was asked.
type scriptClient struct {
	responses []string
	chunkSize int
	failAfter int // fragments before an error, 0 = never

	calls   int
	systems []string
	history [][]llm.Message
}

func (c *scriptClient) Complete(_ context.Context, _ string, _ []llm.Message, _ *llm.RequestOptions) (*llm.Response, error) {
	return nil, fmt.Errorf("not scripted")
}

func (c *scriptClient) CompleteWithRetry(ctx context.Context, system string, messages []llm.Message, _ int, opts *llm.RequestOptions) (*llm.Response, error) {
	return c.Complete(ctx, system, messages, opts)
}

func (c *scriptClient) Stream(_ context.Context, system string, messages []llm.Message, _ *llm.RequestOptions, onText func(string)) (*llm.Response, error) {
	c.systems = append(c.systems, system)
	c.history = append(c.history, messages)

	script := c.responses[c.calls]
	c.calls++

	size := c.chunkSize
	if size <= 0 {
		size = 3
	}
	sent := 0
	for i := 0; i < len(script); i += size {
		end := i + size
		if end > len(script) {
			end = len(script)
		}
		onText(script[i:end])
		sent++
		if c.failAfter > 0 && sent >= c.failAfter {
			return nil, fmt.Errorf("connection reset")
		}
	}
	return &llm.Response{
		Content:      script,
		InputTokens:  10,
		OutputTokens: 20,
		StopReason:   "end_turn",
	}, nil
}

func testStudio(t *testing.T, client llm.Client) *Studio {
	t.Helper()
	studio, err := NewStudio(StudioConfig{AnthropicKey: "test-key"})
	require.NoError(t, err)
	studio.client = client
	return studio
}

const firstTurn = `Here is a red ball on a plane.

<scene>
{"action":"addObject","object":{"id":"ball","geometry":{"type":"sphere","radius":1.5},"material":{"type":"standard","color":"#ff0000"},"position":{"x":0,"y":1.5,"z":0}}}
{"action":"addLight","light":{"id":"sun","type":"directional","intensity":1.2,"position":{"x":5,"y":10,"z":5}}}
{"action":"setCamera","camera":{"fov":60}}
</scene>

Enjoy the view!`

func TestChatBuildsSceneFromStream(t *testing.T) {
	client := &scriptClient{responses: []string{firstTurn}, chunkSize: 3}
	studio := testStudio(t, client)
	sess := studio.NewSession()

	var fragments strings.Builder
	var sceneUpdates, commandBatches int
	resp, err := studio.Chat(context.Background(), sess, "make a red ball", ChatCallbacks{
		OnFragment: func(text string) { fragments.WriteString(text) },
		OnCommands: func(cmds []scene.Command) { commandBatches += len(cmds) },
		OnScene:    func(scene.Document) { sceneUpdates++ },
	})
	require.NoError(t, err)

	// Chat text reaches the UI verbatim, command blocks included.
	assert.Equal(t, firstTurn, fragments.String())
	assert.Equal(t, 3, commandBatches)
	assert.GreaterOrEqual(t, sceneUpdates, 1)
	assert.Equal(t, 20, resp.OutputTokens)

	doc := sess.Document()
	ball, ok := doc.Objects["ball"]
	require.True(t, ok)
	require.NotNil(t, ball.Geometry.Radius)
	assert.InDelta(t, 1.5, *ball.Geometry.Radius, 1e-5)
	assert.Equal(t, "#ff0000", *ball.Material.Color)

	_, ok = doc.Lights["sun"]
	assert.True(t, ok)
	require.NotNil(t, doc.Camera.Fov)
	assert.InDelta(t, 60, *doc.Camera.Fov, 1e-5)

	// The live stage mirrors the document.
	ents := sess.stg.Entities()
	ids := make([]string, 0, len(ents))
	for _, e := range ents {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "ball")
}

func TestChatSecondTurnSeesSceneContext(t *testing.T) {
	second := `<scene>{"action":"updateObject","id":"ball","object":{"material":{"type":"standard","color":"#0000ff"}}}</scene>`
	client := &scriptClient{responses: []string{firstTurn, second}, chunkSize: 7}
	studio := testStudio(t, client)
	sess := studio.NewSession()

	_, err := studio.Chat(context.Background(), sess, "make a red ball", ChatCallbacks{})
	require.NoError(t, err)
	_, err = studio.Chat(context.Background(), sess, "make it blue", ChatCallbacks{})
	require.NoError(t, err)

	// The system prompt for turn two lists the live object ids.
	require.Len(t, client.systems, 2)
	assert.Contains(t, client.systems[1], "ball")

	// History replays the first turn.
	require.Len(t, client.history[1], 3)
	assert.Equal(t, "make a red ball", client.history[1][0].Content)
	assert.Equal(t, firstTurn, client.history[1][1].Content)
	assert.Equal(t, "make it blue", client.history[1][2].Content)

	doc := sess.Document()
	assert.Equal(t, "#0000ff", *doc.Objects["ball"].Material.Color)
}

func TestChatStreamFailureKeepsAppliedCommands(t *testing.T) {
	// Fail after the first command block has streamed but before the rest.
	script := `<scene>{"action":"addObject","object":{"id":"box-1","geometry":{"type":"box"}}}</scene> and then` +
		` <scene>{"action":"addObject","object":{"id":"box-2","geometry":{"type":"box"}}}</scene>`
	cut := strings.Index(script, "and then")
	client := &scriptClient{responses: []string{script}, chunkSize: 1, failAfter: cut}
	studio := testStudio(t, client)
	sess := studio.NewSession()

	_, err := studio.Chat(context.Background(), sess, "two boxes", ChatCallbacks{})
	require.Error(t, err)

	doc := sess.Document()
	_, ok := doc.Objects["box-1"]
	assert.True(t, ok, "commands before the failure stay applied")
	_, ok = doc.Objects["box-2"]
	assert.False(t, ok)

	// A failed turn is not recorded in history.
	assert.Empty(t, sess.history)
}

func TestChatMalformedCommandsAreIsolated(t *testing.T) {
	script := `<scene>
{"action":"addObject","object":{"id":"good","geometry":{"type":"box"}}}
{"action":"addObject","object":{"id":"broken","geometry":{"type":
{"action":"addLight","light":{"id":"lamp","type":"point"}}
</scene>`
	client := &scriptClient{responses: []string{script}, chunkSize: 5}
	studio := testStudio(t, client)
	sess := studio.NewSession()

	_, err := studio.Chat(context.Background(), sess, "stuff", ChatCallbacks{})
	require.NoError(t, err)

	doc := sess.Document()
	_, ok := doc.Objects["good"]
	assert.True(t, ok)
	_, ok = doc.Objects["broken"]
	assert.False(t, ok)
}

func TestSessionSnapshotWebP(t *testing.T) {
	client := &scriptClient{responses: []string{firstTurn}}
	studio := testStudio(t, client)
	sess := studio.NewSession()

	_, err := studio.Chat(context.Background(), sess, "make a red ball", ChatCallbacks{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sess.SnapshotWebP(&buf, 64))
	require.Greater(t, buf.Len(), 12)
	assert.Equal(t, "RIFF", string(buf.Bytes()[:4]))
	assert.Equal(t, "WEBP", string(buf.Bytes()[8:12]))
}

func TestSessionRegistry(t *testing.T) {
	client := &scriptClient{}
	studio := testStudio(t, client)

	sess := studio.NewSession()
	got, ok := studio.Session(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	studio.CloseSession(sess.ID)
	_, ok = studio.Session(sess.ID)
	assert.False(t, ok)
}

func TestLoadConfigMissingFileIsZero(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.toml")
	require.NoError(t, err)
	assert.Equal(t, StudioConfig{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	path := t.TempDir() + "/studio.toml"
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":9090"
model = "claude-sonnet-4-5"
snapshot_size = 256
verbose = true
`), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 256, cfg.SnapshotSize)
	assert.True(t, cfg.VerboseLogging)
}
