package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, api *testAPI, query string) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws" + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) SocketFrame {
	t.Helper()
	var f SocketFrame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, req EventRequest) SocketFrame {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, req))
	return readFrame(t, ctx, conn)
}

func TestChatSocket_Conversation(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	conn, ctx := dialWS(t, api, "?session_id=ws1")

	hello := readFrame(t, ctx, conn)
	assert.Equal(t, FrameSession, hello.Type)
	assert.Equal(t, "ws1", hello.SessionID)

	f := sendFrame(t, ctx, conn, EventRequest{Kind: workflow.EventText, Value: "Onboard"})
	require.Equal(t, FrameReply, f.Type)
	require.NotNil(t, f.Reply)
	assert.NotEmpty(t, f.Reply.Welcome)
	assert.Equal(t, workflow.AwaitingInputMethod(), f.Reply.State)

	for _, s := range []string{"manual", "Jane Doe", "555-123-4567", "Engineer", "85000"} {
		f = sendFrame(t, ctx, conn, EventRequest{Value: s})
		require.Equal(t, FrameReply, f.Type, s)
	}
	assert.Equal(t, workflow.ReviewingDraft(), f.Reply.State)

	f = sendFrame(t, ctx, conn, EventRequest{Value: "save"})
	assert.Equal(t, workflow.Committed(), f.Reply.State)
	require.NotNil(t, f.Reply.Committed)

	snap, err := api.ctrl.Snapshot("ws1")
	require.NoError(t, err)
	assert.Equal(t, workflow.Committed(), snap.State)
}

func TestChatSocket_AssignsSessionID(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	conn, ctx := dialWS(t, api, "")

	hello := readFrame(t, ctx, conn)
	assert.True(t, ValidSessionID(hello.SessionID))
}

func TestChatSocket_InvalidFramesKeepConnection(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	conn, ctx := dialWS(t, api, "?session_id=ws1")
	readFrame(t, ctx, conn)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"kind":`)))
	f := readFrame(t, ctx, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, string(types.ErrInvalidRequest), f.Error.Code)

	f = sendFrame(t, ctx, conn, EventRequest{Kind: "shout"})
	assert.Equal(t, FrameError, f.Type)

	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, []byte{1, 2, 3}))
	f = readFrame(t, ctx, conn)
	assert.Equal(t, FrameError, f.Type)

	f = sendFrame(t, ctx, conn, EventRequest{Value: "Onboard"})
	assert.Equal(t, FrameReply, f.Type)
}

func TestChatSocket_ClosesWhenSessionEnds(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	conn, ctx := dialWS(t, api, "?session_id=ws1")
	readFrame(t, ctx, conn)
	sendFrame(t, ctx, conn, EventRequest{Value: "Onboard"})

	require.NoError(t, api.ctrl.Close())

	f := sendFrame(t, ctx, conn, EventRequest{Value: "manual"})
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, string(types.ErrSessionClosed), f.Error.Code)

	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestChatSocket_RejectsInvalidSessionID(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	srv := httptest.NewServer(api.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws?session_id=a%20b", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
