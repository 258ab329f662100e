// Package cursor carries the section and page being crawled through a context.
package cursor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const cursorKey key = 0

// Cursor identifies one page attempt.
type Cursor struct {
	RequestID string
	Section   string
	Page      int
	StartTime time.Time
}

// Elapsed returns the time since the attempt started.
func (c *Cursor) Elapsed() time.Duration {
	return time.Since(c.StartTime)
}

// With attaches a fresh cursor and a logger tagged with it to ctx.
func With(ctx context.Context, section string, page int) context.Context {
	c := &Cursor{
		RequestID: generateID(),
		Section:   section,
		Page:      page,
		StartTime: time.Now(),
	}
	logger := log.Logger.With().
		Str("request_id", c.RequestID).
		Str("section", section).
		Int("page", page).
		Logger()
	ctx = logger.WithContext(ctx)
	return context.WithValue(ctx, cursorKey, c)
}

// From returns the cursor in ctx, or a placeholder when there is none.
func From(ctx context.Context) *Cursor {
	if c, ok := ctx.Value(cursorKey).(*Cursor); ok {
		return c
	}
	return &Cursor{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns the logger attached by With, falling back to the global one.
func Logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Error ties an error to the page it happened on
type Error struct {
	Section string
	Page    int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s page %d: %v", e.Section, e.Page, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err annotated with the cursor in ctx. A nil err stays nil.
func Wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	c := From(ctx)
	return &Error{Section: c.Section, Page: c.Page, Err: err}
}
