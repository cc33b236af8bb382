package cli

import (
	"context"

	"github.com/desplega-ai/mood/internal/app"
)

// Context is shared by every command. Commands that need the full service
// graph call Build; migrate and seed only touch the database.
type Context struct {
	Ctx context.Context
}

func (c *Context) Build() (*app.App, error) {
	return app.New()
}
