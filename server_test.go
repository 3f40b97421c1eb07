package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/tools/logger"
)

func testServer(t *testing.T, client *scriptClient) (*Studio, *httptest.Server) {
	t.Helper()
	studio := testStudio(t, client)
	srv := httptest.NewServer(NewServer(studio, logger.Default()))
	t.Cleanup(srv.Close)
	return studio, srv
}

func TestHealthz(t *testing.T) {
	_, srv := testServer(t, &scriptClient{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSnapshotUnknownSession(t *testing.T) {
	_, srv := testServer(t, &scriptClient{})

	resp, err := http.Get(srv.URL + "/snapshot?session=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSnapshotEndpoint(t *testing.T) {
	studio, srv := testServer(t, &scriptClient{})
	sess := studio.NewSession()

	resp, err := http.Get(srv.URL + "/snapshot?session=" + sess.ID + "&size=64")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Greater(t, len(body), 12)
	assert.Equal(t, "WEBP", string(body[8:12]))
}

func TestWebSocketChatRoundTrip(t *testing.T) {
	_, srv := testServer(t, &scriptClient{responses: []string{firstTurn}, chunkSize: 4})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// First message announces the session and initial scene.
	var hello ChatOutbound
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "scene", hello.Type)
	require.NotNil(t, hello.Scene)
	assert.NotEmpty(t, hello.Text)
	assert.Contains(t, hello.Scene.Lights, "ambient")

	require.NoError(t, conn.WriteJSON(ChatInbound{Type: "chat", Text: "make a red ball"}))

	var fragments strings.Builder
	var lastScene *ChatOutbound
	for {
		var msg ChatOutbound
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "fragment" {
			fragments.WriteString(msg.Text)
		}
		if msg.Type == "scene" {
			lastScene = &msg
		}
		if msg.Type == "error" {
			t.Fatalf("unexpected error message: %s", msg.Error)
		}
		if msg.Type == "done" {
			assert.Equal(t, 20, msg.OutputTokens)
			break
		}
	}

	assert.Equal(t, firstTurn, fragments.String())
	require.NotNil(t, lastScene)
	assert.Contains(t, lastScene.Scene.Objects, "ball")
}

func TestWebSocketRejectsBadMessage(t *testing.T) {
	_, srv := testServer(t, &scriptClient{})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello ChatOutbound
	require.NoError(t, conn.ReadJSON(&hello))

	require.NoError(t, conn.WriteJSON(ChatInbound{Type: "bogus"}))
	var msg ChatOutbound
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
}
