package api

import (
	"context"
	"testing"

	http "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/chatwidget/internal/errors"
)

func TestHealth(t *testing.T) {
	doer := &fakeDoer{body: `{"status":"healthy","version":"1.4.0"}`}
	client := newTestClient(t, doer)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy())
	assert.Equal(t, "1.4.0", health.Version)

	require.Len(t, doer.requests, 1)
	assert.Equal(t, http.MethodGet, doer.requests[0].Method)
	assert.Equal(t, "http://backend.test/health", doer.requests[0].URL.String())
}

func TestHealthErrors(t *testing.T) {
	tests := []struct {
		name string
		doer *fakeDoer
	}{
		{"invalid json", &fakeDoer{body: "ok"}},
		{"missing status", &fakeDoer{body: `{"version":"1"}`}},
		{"server error", &fakeDoer{status: http.StatusServiceUnavailable, body: "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.doer)
			health, err := client.Health(context.Background())
			assert.Error(t, err)
			assert.Nil(t, health)
		})
	}
}

func TestVersion(t *testing.T) {
	client := newTestClient(t, &fakeDoer{body: `{"version":"2.0.1"}`})

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", version.Version)

	missing := newTestClient(t, &fakeDoer{body: `{}`})
	_, err = missing.Version(context.Background())
	assert.True(t, apierrors.IsInvalidResponse(err))
}
