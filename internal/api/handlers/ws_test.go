package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/posthub/posthub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocket_RejectsBadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(ts.WebSocketURL("garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_ReceivesEngagementOnLike(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, ownerTokens := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, likerTokens := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	post := createPost(t, ts, ownerTokens.Access, "T", "B")

	conn, _, err := websocket.DefaultDialer.Dial(ts.WebSocketURL(ownerTokens.Access), nil)
	require.NoError(t, err)
	defer conn.Close()

	likeURL := ts.APIURL("/posts/" + post.ID + "/like")

	// The first like can race the client's registration on the hub, so keep
	// toggling membership until an event is delivered. A read deadline kills
	// the connection in gorilla/websocket, so the reads stay blocking.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(100 * time.Millisecond):
			}
			for _, method := range []string{http.MethodDelete, http.MethodPost} {
				req, err := http.NewRequest(method, likeURL, nil)
				if err != nil {
					return
				}
				req.Header.Set("Authorization", "Bearer "+likerTokens.Access)
				if resp, err := http.DefaultClient.Do(req); err == nil {
					resp.Body.Close()
				}
			}
		}
	}()

	var event struct {
		Type       string `json:"type"`
		PostID     string `json:"postId"`
		LikesCount int    `json:"likesCount"`
	}
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for event.LikesCount != 1 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &event))
	}

	assert.Equal(t, "engagement", event.Type)
	assert.Equal(t, post.ID, event.PostID)
}
