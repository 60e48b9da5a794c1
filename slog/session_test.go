package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/mock"
	scslog "github.com/fwojciec/storecrawl/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSessionOpener_Open(t *testing.T) {
	t.Parallel()

	t.Run("wraps the opened session", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		navigated := ""
		inner := &mock.SessionOpener{
			OpenFn: func(_ context.Context, _ storecrawl.SessionOptions) (storecrawl.Session, error) {
				return &mock.Session{
					NavigateFn: func(_ context.Context, url string) error {
						navigated = url
						return nil
					},
				}, nil
			},
		}

		o := scslog.NewLoggingSessionOpener(inner, logger)
		s, err := o.Open(context.Background(), storecrawl.DefaultSessionOptions(true))
		require.NoError(t, err)
		require.IsType(t, &scslog.LoggingSession{}, s)

		require.NoError(t, s.Navigate(context.Background(), "https://store.example.com/category/new/"))

		assert.Equal(t, "https://store.example.com/category/new/", navigated)
		output := buf.String()
		assert.Contains(t, output, "session open")
		assert.Contains(t, output, "headless=true")
		assert.Contains(t, output, "msg=navigate")
	})

	t.Run("logs and returns open failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SessionOpener{
			OpenFn: func(_ context.Context, _ storecrawl.SessionOptions) (storecrawl.Session, error) {
				return nil, errors.New("chrome not found")
			},
		}

		s, err := scslog.NewLoggingSessionOpener(inner, logger).Open(context.Background(), storecrawl.SessionOptions{})

		require.Error(t, err)
		assert.Nil(t, s)
		assert.Contains(t, buf.String(), "err=\"chrome not found\"")
	})
}

func TestLoggingSession(t *testing.T) {
	t.Parallel()

	t.Run("logs waits at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Session{
			WaitElementsFn: func(_ context.Context, _ storecrawl.Locator) ([]storecrawl.Element, error) {
				return []storecrawl.Element{&mock.Element{}, &mock.Element{}}, nil
			},
		}

		s := scslog.NewLoggingSession(inner, logger)
		els, err := s.WaitElements(context.Background(), storecrawl.ID("NewReleasesRows"))

		require.NoError(t, err)
		assert.Len(t, els, 2)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "locator=id=NewReleasesRows")
		assert.Contains(t, output, "count=2")
	})

	t.Run("omits waits at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Session{
			WaitElementsFn: func(_ context.Context, _ storecrawl.Locator) ([]storecrawl.Element, error) {
				return nil, storecrawl.Errorf(storecrawl.ETIMEOUT, "waiting for id=x")
			},
		}

		_, err := scslog.NewLoggingSession(inner, logger).WaitElements(context.Background(), storecrawl.ID("x"))

		require.Error(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("delegates current URL and close", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		closed := false
		inner := &mock.Session{
			CurrentURLFn: func(_ context.Context) (string, error) {
				return "about:blank", nil
			},
			CloseFn: func() error {
				closed = true
				return nil
			},
		}

		s := scslog.NewLoggingSession(inner, logger)
		u, err := s.CurrentURL(context.Background())
		require.NoError(t, err)
		require.NoError(t, s.Close())

		assert.Equal(t, "about:blank", u)
		assert.True(t, closed)
		assert.Contains(t, buf.String(), "session close")
	})
}
