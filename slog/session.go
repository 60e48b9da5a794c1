package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/storecrawl"
)

// Ensure LoggingSessionOpener implements storecrawl.SessionOpener.
var _ storecrawl.SessionOpener = (*LoggingSessionOpener)(nil)

// LoggingSessionOpener wraps a SessionOpener so every session it opens logs
// its navigation and waits.
type LoggingSessionOpener struct {
	next   storecrawl.SessionOpener
	logger *slog.Logger
}

// NewLoggingSessionOpener creates a new LoggingSessionOpener.
func NewLoggingSessionOpener(next storecrawl.SessionOpener, logger *slog.Logger) *LoggingSessionOpener {
	return &LoggingSessionOpener{next: next, logger: logger}
}

// Open delegates to the wrapped opener and wraps the session it returns.
func (o *LoggingSessionOpener) Open(ctx context.Context, opts storecrawl.SessionOptions) (s storecrawl.Session, err error) {
	defer func(begin time.Time) {
		o.logger.Info("session open",
			"headless", opts.Headless,
			"stealth", opts.Stealth,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	s, err = o.next.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewLoggingSession(s, o.logger), nil
}

// Ensure LoggingSession implements storecrawl.Session.
var _ storecrawl.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with logging. Navigation is logged at
// info level, element waits at debug level.
type LoggingSession struct {
	next   storecrawl.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next storecrawl.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Navigate delegates to the wrapped session and logs the operation.
func (s *LoggingSession) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Navigate(ctx, url)
}

// CurrentURL delegates to the wrapped session.
func (s *LoggingSession) CurrentURL(ctx context.Context) (string, error) {
	return s.next.CurrentURL(ctx)
}

// WaitElements delegates to the wrapped session and logs the wait.
func (s *LoggingSession) WaitElements(ctx context.Context, loc storecrawl.Locator) (els []storecrawl.Element, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("wait elements",
			"locator", loc.String(),
			"count", len(els),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WaitElements(ctx, loc)
}

// Close delegates to the wrapped session and logs the result.
func (s *LoggingSession) Close() (err error) {
	defer func() {
		s.logger.Info("session close", "err", err)
	}()
	return s.next.Close()
}
