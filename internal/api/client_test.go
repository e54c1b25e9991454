package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// fakeDoer records requests and answers with a canned response
type fakeDoer struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	status   int
	body     string
	err      error
	do       func(req *http.Request) (*http.Response, error)
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(data))
	} else {
		f.bodies = append(f.bodies, "")
	}
	f.mu.Unlock()

	if f.do != nil {
		return f.do(req)
	}
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func newTestClient(t *testing.T, doer Doer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{
		WithHTTPClient(doer),
		WithEndpoint("http://backend.test/"),
		WithSessionID("session-1"),
	}, opts...)
	client, err := NewClient(opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(WithHTTPClient(&fakeDoer{}))
	require.NoError(t, err)

	assert.Equal(t, models.DefaultEndpoint, client.Endpoint())
	assert.Len(t, client.SessionID(), 36, "expected a generated UUID")
	assert.False(t, client.IsClosed())

	other, err := NewClient(WithHTTPClient(&fakeDoer{}))
	require.NoError(t, err)
	assert.NotEqual(t, client.SessionID(), other.SessionID())
}

func TestNewClientDefaultTransport(t *testing.T) {
	client, err := NewClient(WithTimeout(5 * time.Second))
	require.NoError(t, err)
	assert.NotNil(t, client.httpClient)
}

func TestWithEndpointTrimsSlash(t *testing.T) {
	client := newTestClient(t, &fakeDoer{})
	assert.Equal(t, "http://backend.test", client.Endpoint())
}

func TestChatRequestShape(t *testing.T) {
	doer := &fakeDoer{body: `{"reply":"Hi there"}`}
	client := newTestClient(t, doer)

	reply, err := client.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	require.Len(t, doer.requests, 1)
	req := doer.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "http://backend.test/chat", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(doer.bodies[0]), &sent))
	assert.Equal(t, map[string]string{"message": "Hello", "session_id": "session-1"}, sent)
}

func TestChatOmitsEmptySession(t *testing.T) {
	doer := &fakeDoer{body: `{"reply":"ok"}`}
	client := newTestClient(t, doer, WithSessionID(""))

	_, err := client.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Hello"}`, doer.bodies[0])
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name  string
		doer  *fakeDoer
		check func(t *testing.T, err error)
	}{
		{
			name: "transport failure",
			doer: &fakeDoer{err: errors.New("connection refused")},
			check: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsNetworkError(err))
				assert.False(t, apierrors.IsInvalidResponse(err))
			},
		},
		{
			name: "non-2xx status",
			doer: &fakeDoer{status: http.StatusInternalServerError, body: `{"reply":"boom"}`},
			check: func(t *testing.T, err error) {
				assert.Equal(t, 500, apierrors.GetHTTPStatus(err))
			},
		},
		{
			name: "not json",
			doer: &fakeDoer{body: `<html>oops</html>`},
			check: func(t *testing.T, err error) {
				var parseErr *apierrors.ParseError
				assert.ErrorAs(t, err, &parseErr)
				assert.True(t, apierrors.IsInvalidResponse(err))
			},
		},
		{
			name: "missing reply",
			doer: &fakeDoer{body: `{"answer":"hi"}`},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apierrors.ErrMissingReply)
			},
		},
		{
			name: "reply not a string",
			doer: &fakeDoer{body: `{"reply":42}`},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apierrors.ErrMissingReply)
			},
		},
		{
			name: "null reply",
			doer: &fakeDoer{body: `{"reply":null}`},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apierrors.ErrMissingReply)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.doer)
			reply, err := client.Chat(context.Background(), "Hello")
			require.Error(t, err)
			assert.Empty(t, reply)
			tt.check(t, err)
		})
	}
}

func TestChatEmptyReplyIsValid(t *testing.T) {
	client := newTestClient(t, &fakeDoer{body: `{"reply":""}`})
	reply, err := client.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestChatEmptyMessage(t *testing.T) {
	doer := &fakeDoer{}
	client := newTestClient(t, doer)

	_, err := client.Chat(context.Background(), "")
	assert.ErrorIs(t, err, apierrors.ErrEmptyMessage)
	assert.Empty(t, doer.requests)
}

func TestChatTimeout(t *testing.T) {
	doer := &fakeDoer{do: func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}}
	client := newTestClient(t, doer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, "Hello")
	require.Error(t, err)
	assert.True(t, apierrors.IsTimeoutError(err))
}

// transportTimeout is what a transport returns when its own deadline fires
type transportTimeout struct{}

func (transportTimeout) Error() string   { return "Client.Timeout exceeded while awaiting headers" }
func (transportTimeout) Timeout() bool   { return true }
func (transportTimeout) Temporary() bool { return true }

func TestChatTransportTimeout(t *testing.T) {
	doer := &fakeDoer{err: transportTimeout{}}
	client := newTestClient(t, doer)

	_, err := client.Chat(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, apierrors.IsTimeoutError(err))
	assert.False(t, apierrors.IsNetworkError(err))
}

func TestChatConfiguredTimeoutRealTransport(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
			return
		}
		_, _ = io.WriteString(w, `{"reply":"too late"}`)
	}))
	defer srv.Close()

	client, err := NewClient(WithEndpoint(srv.URL), WithTimeout(time.Second))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Chat(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, apierrors.IsTimeoutError(err), "got %v", err)
	assert.False(t, apierrors.IsNetworkError(err))
}

func TestChatConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(nethttp.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client, err := NewClient(WithEndpoint(endpoint), WithTimeout(time.Second))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Chat(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, apierrors.IsNetworkError(err))
	assert.False(t, apierrors.IsTimeoutError(err))
}

func TestChatCancelled(t *testing.T) {
	doer := &fakeDoer{do: func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	}}
	client := newTestClient(t, doer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Chat(ctx, "Hello")
	require.Error(t, err)
	assert.True(t, apierrors.IsNetworkError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClosedClient(t *testing.T) {
	doer := &fakeDoer{body: `{"reply":"x"}`}
	client := newTestClient(t, doer)
	client.Close()

	_, err := client.Chat(context.Background(), "Hello")
	assert.ErrorIs(t, err, apierrors.ErrClientClosed)
	assert.Empty(t, doer.requests)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("  abc \n", 10))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
