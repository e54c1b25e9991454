package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/config"
)

type fakeTUI struct {
	called bool
	cfg    config.Config
	client api.ChatClientInterface
	err    error
}

func (f *fakeTUI) RunChat(ctx context.Context, client api.ChatClientInterface, cfg config.Config, logger *zap.Logger) error {
	f.called = true
	f.cfg = cfg
	f.client = client
	return f.err
}

type testEnv struct {
	deps    *Dependencies
	client  *api.MockChatClient
	tui     *fakeTUI
	cfg     config.Config
	copied  []string
	clipErr error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	env := &testEnv{
		client: &api.MockChatClient{EndpointVal: "http://localhost:5000", SessionVal: "sess-1"},
		tui:    &fakeTUI{},
	}
	env.deps = &Dependencies{
		NewClient: func(cfg config.Config, logger *zap.Logger) (api.ChatClientInterface, error) {
			env.cfg = cfg
			return env.client, nil
		},
		TUI: env.tui,
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return env.clipErr
		},
		Stdin:       strings.NewReader(""),
		StdinIsPipe: func() bool { return false },
		StdoutIsTTY: func() bool { return false },
	}
	return env
}

func (e *testEnv) run(args ...string) (string, string, error) {
	cmd := NewRootCmd(e.deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
