package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"assistchat/internal/conversation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// Client must satisfy the submission flow's Sender.
var _ conversation.Sender = (*Client)(nil)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	client := New(Config{BaseURL: server.URL, Timeout: 2 * time.Second})
	t.Cleanup(client.httpClient.CloseIdleConnections)
	return client, server
}

func TestClient_Send_Success(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header
	var gotPath, gotMethod string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Sure, where from?"}`))
	})

	reply, err := client.Send(context.Background(), "Book a flight to Paris.")
	require.NoError(t, err)
	assert.Equal(t, "Sure, where from?", reply)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/chat", gotPath)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.NotEmpty(t, gotHeaders.Get(RequestIDHeader))
	assert.JSONEq(t, `{"message":"Book a flight to Paris."}`, string(gotBody))
}

func TestClient_Send_EmptyReplyIsValid(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":""}`))
	})

	reply, err := client.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestClient_Send_PreservesWhitespaceAndUnicode(t *testing.T) {
	want := "Line 1\n\n  • indented ✈️\tdone"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{"response": req.Message})
	})

	reply, err := client.Send(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, want, reply)
}

func TestClient_Send_StatusFailure(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte(`{"response":"ignored"}`))
		})

		_, err := client.Send(context.Background(), "hi")
		require.Error(t, err)

		var de *DeliveryError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, KindStatus, de.Kind)
		assert.Equal(t, code, de.StatusCode)
		assert.NotEmpty(t, de.RequestID)
	}
}

func TestClient_Send_DecodeFailure(t *testing.T) {
	bodies := map[string]string{
		"not json":       `<html>oops</html>`,
		"missing field":  `{"reply":"wrong key"}`,
		"wrong type":     `{"response":42}`,
		"null response":  `{"response":null}`,
		"truncated json": `{"response":"half`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			_, err := client.Send(context.Background(), "hi")
			require.Error(t, err)
			assert.Equal(t, KindDecode, KindOf(err))
		})
	}
}

func TestClient_Send_TransportFailure(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	client := New(Config{BaseURL: "http://" + addr, Timeout: time.Second})
	_, err = client.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestClient_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	defer client.httpClient.CloseIdleConnections()

	start := time.Now()
	_, err := client.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_Send_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, "hi")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Endpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:8000/chat", New(Config{BaseURL: "http://localhost:8000/"}).Endpoint())
	assert.Equal(t, "https://x.example/api/chat", New(Config{BaseURL: "https://x.example/api"}).Endpoint())
}

func TestClient_FlowIntegration(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	store := conversation.NewStore()
	flow := conversation.NewFlow(store, client)

	out, ok := flow.Submit(context.Background(), "Book a flight to Paris.")
	require.True(t, ok)
	assert.Equal(t, KindStatus, KindOf(out.Err))

	last, _ := store.Last()
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, conversation.FallbackText, last.Content)
	assert.False(t, store.Pending())
}

func TestDeliveryError_Message(t *testing.T) {
	err := &DeliveryError{Kind: KindStatus, RequestID: "abc", StatusCode: 502, Err: errors.New("bad gateway")}
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "abc")

	err = &DeliveryError{Kind: KindTransport, RequestID: "abc", Err: errors.New("refused")}
	assert.NotContains(t, err.Error(), "status")
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
