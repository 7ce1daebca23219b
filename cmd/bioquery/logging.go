package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/zoobzio/bioquery"
	"github.com/zoobzio/bioquery/internal/config"
	"github.com/zoobzio/bioquery/ncbi"
	"github.com/zoobzio/capitan"
)

// newLogger returns a text logger styled for terminals, or a JSON logger.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
		Prefix:          "bioquery",
	})
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// bridged lists the signals forwarded to the logger and their levels.
var bridged = []struct {
	signal capitan.Signal
	level  slog.Level
}{
	{bioquery.QueryStarted, slog.LevelDebug},
	{bioquery.ExtractCompleted, slog.LevelDebug},
	{bioquery.PrimarySucceeded, slog.LevelInfo},
	{bioquery.ParserFallback, slog.LevelWarn},
	{bioquery.DispatchComplete, slog.LevelDebug},
	{bioquery.DispatchFailed, slog.LevelWarn},
	{bioquery.QueryCompleted, slog.LevelInfo},
	{bioquery.RequestStarted, slog.LevelDebug},
	{bioquery.RequestCompleted, slog.LevelDebug},
	{bioquery.RequestFailed, slog.LevelWarn},
	{bioquery.ProviderCallStarted, slog.LevelDebug},
	{bioquery.ProviderCallCompleted, slog.LevelDebug},
	{bioquery.ProviderCallFailed, slog.LevelWarn},
	{bioquery.ResponseParseFailed, slog.LevelWarn},
	{ncbi.FetchCompleted, slog.LevelInfo},
	{ncbi.FetchFailed, slog.LevelWarn},
}

type attrReader func(*capitan.Event) (slog.Attr, bool)

func stringAttr(name string, from func(*capitan.Event) (string, bool)) attrReader {
	return func(e *capitan.Event) (slog.Attr, bool) {
		v, ok := from(e)
		return slog.String(name, v), ok && v != ""
	}
}

func intAttr(name string, from func(*capitan.Event) (int, bool)) attrReader {
	return func(e *capitan.Event) (slog.Attr, bool) {
		v, ok := from(e)
		return slog.Int(name, v), ok
	}
}

var readers = []attrReader{
	stringAttr("query_id", bioquery.QueryIDKey.From),
	stringAttr("operation", bioquery.OperationKey.From),
	stringAttr("status", bioquery.StatusKey.From),
	stringAttr("source", bioquery.SourceKey.From),
	stringAttr("parser", bioquery.ParserKey.From),
	stringAttr("toolkit", bioquery.ToolkitKey.From),
	stringAttr("reference", bioquery.ReferenceKey.From),
	stringAttr("error_kind", bioquery.ErrorKindKey.From),
	stringAttr("message", bioquery.MessageKey.From),
	intAttr("sequences", bioquery.SequenceCountKey.From),
	intAttr("duration_ms", bioquery.DurationKey.From),
	stringAttr("request_id", bioquery.RequestIDKey.From),
	stringAttr("provider", bioquery.ProviderKey.From),
	stringAttr("model", bioquery.ModelKey.From),
	intAttr("tokens", bioquery.TotalTokensKey.From),
	intAttr("http_status", bioquery.HTTPStatusCodeKey.From),
	intAttr("llm_duration_ms", bioquery.DurationMsKey.From),
	stringAttr("error", bioquery.ErrorKey.From),
	stringAttr("term", ncbi.TermKey.From),
	stringAttr("accession", ncbi.AccessionKey.From),
}

// signalBridge forwards capitan events to a slog logger until closed.
type signalBridge struct {
	closers []func()
}

func (b *signalBridge) Close() error {
	for _, c := range b.closers {
		c()
	}
	b.closers = nil
	return nil
}

func bridgeSignals(logger *slog.Logger) io.Closer {
	b := &signalBridge{}
	for _, s := range bridged {
		name, level := string(s.signal), s.level
		listener := capitan.Hook(s.signal, func(ctx context.Context, e *capitan.Event) {
			if !logger.Enabled(ctx, level) {
				return
			}
			attrs := make([]slog.Attr, 0, 4)
			for _, read := range readers {
				if attr, ok := read(e); ok {
					attrs = append(attrs, attr)
				}
			}
			logger.LogAttrs(ctx, level, name, attrs...)
		})
		b.closers = append(b.closers, func() { listener.Close() })
	}
	return b
}
