package cursor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestWith(t *testing.T) {
	ctx := With(context.Background(), "Model X", 3)
	c := From(ctx)

	if c.Section != "Model X" || c.Page != 3 {
		t.Errorf("Expected Model X page 3, got %s page %d", c.Section, c.Page)
	}
	if len(c.RequestID) != 16 {
		t.Errorf("Expected 16-char request id, got %q", c.RequestID)
	}
}

func TestFrom_Missing(t *testing.T) {
	c := From(context.Background())
	if c.RequestID != "unknown" {
		t.Errorf("Expected unknown request id, got %q", c.RequestID)
	}
}

func TestLogger_TaggedWithCursor(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	ctx := With(context.Background(), "Sedan", 7)
	Logger(ctx).Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{`"section":"Sedan"`, `"page":7`, `"request_id":`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in log line, got %s", want, out)
		}
	}
}

func TestLogger_Fallback(t *testing.T) {
	if Logger(context.Background()) != &log.Logger {
		t.Error("Expected global logger without a cursor")
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("boom")
	ctx := With(context.Background(), "Coupe", 2)

	err := Wrap(ctx, base)
	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to match base")
	}
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Page != 2 {
		t.Errorf("Expected cursor error for page 2, got %v", err)
	}
	if err.Error() != "Coupe page 2: boom" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if Wrap(ctx, nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
