package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/desplega-ai/mood/internal/domain/mood"
)

// ProcessRepliesCmd runs one reply poll and prints the outcome as JSON.
type ProcessRepliesCmd struct{}

func (p *ProcessRepliesCmd) Run(c *Context) error {
	a, err := c.Build()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Services.MoodCheck.ProcessReplies(c.Ctx)
	if res != nil {
		if perr := printJSON(res); perr != nil {
			return perr
		}
	}
	return err
}

type SendPromptsCmd struct {
	TimeOfDay string `name:"time-of-day" help:"Prompt slot: morning or afternoon." enum:"morning,afternoon" default:"morning"`
}

func (s *SendPromptsCmd) Run(c *Context) error {
	slot, ok := mood.ParseTimeOfDay(s.TimeOfDay)
	if !ok {
		return fmt.Errorf("invalid time of day %q", s.TimeOfDay)
	}
	a, err := c.Build()
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.Services.MoodCheck.SendPrompts(c.Ctx, slot)
	if err != nil {
		return err
	}
	return printJSON(sum)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
