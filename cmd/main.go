package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/desplega-ai/mood/internal/cli"
)

var CLI struct {
	Serve          cli.ServeCmd          `cmd:"" help:"Run the HTTP API." default:"1"`
	ProcessReplies cli.ProcessRepliesCmd `cmd:"" name:"process-replies" help:"Poll the mailbox once and score replies."`
	SendPrompts    cli.SendPromptsCmd    `cmd:"" name:"send-prompts" help:"Send mood-check prompts to due founders."`
	Migrate        cli.MigrateCmd        `cmd:"" help:"Apply database migrations."`
	Seed           cli.SeedCmd           `cmd:"" help:"Create a development API key and founder."`
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("moodcheck"),
		kong.Description("Email mood check-ins for founders"),
		kong.UsageOnError(),
	)
	if err := kctx.Run(&cli.Context{Ctx: context.Background()}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
