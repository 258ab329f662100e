// Package cli provides the command-line interface for listcrawl.
package cli

import (
	"context"

	"github.com/law-makers/listcrawl/internal/app"
	"github.com/spf13/cobra"
)

type ctxKey struct{}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, ctxKey{}, a))
}

// GetApp retrieves the Application stored by SetApp, or nil.
func GetApp(cmd *cobra.Command) *app.Application {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(ctxKey{}).(*app.Application)
	return a
}
