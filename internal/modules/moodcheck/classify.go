package moodcheck

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/domain/mood"
	"github.com/desplega-ai/mood/internal/platform/logger"
	"github.com/desplega-ai/mood/internal/platform/openai"
)

const singlePrompt = `You are a mood classifier. Analyze the following text and classify the overall mood on a scale from 0 to 5:
0 = Terrible
1 = Bad
2 = Meh
3 = Okay
4 = Good
5 = Excellent

The text might be in Spanish or English.

Respond ONLY with a single number from 0 to 5, nothing else.`

const dualPrompt = `You are a mood classifier. The text is a reply to two questions: "How was yesterday?" and "How do you feel about today?".
Classify each answer on a scale from 0 to 5:
0 = Terrible
1 = Bad
2 = Meh
3 = Okay
4 = Good
5 = Excellent

The text might be in Spanish or English. If only one day is mentioned, use the same score for both.

Respond ONLY with two numbers separated by a comma, yesterday first, like: 2,4`

var (
	firstInt  = regexp.MustCompile(`-?\d+`)
	firstPair = regexp.MustCompile(`(-?\d+)\s*,\s*(-?\d+)`)
)

// Classification is the outcome of scoring one reply. It is persisted next
// to the scores for audit.
type Classification struct {
	Variant  types.Variant `json:"variant"`
	Scores   types.Scores  `json:"scores"`
	Model    string        `json:"model,omitempty"`
	Output   string        `json:"output"`
	Degraded bool          `json:"degraded"`
	Error    string        `json:"error,omitempty"`
}

func (c Classification) JSON() datatypes.JSON {
	b, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// Classifier never fails: unusable model output or model errors degrade to
// the default score.
type Classifier interface {
	Classify(ctx context.Context, variant types.Variant, text string) Classification
}

type llmClassifier struct {
	log     *logger.Logger
	llm     openai.Client
	timeout time.Duration
}

func NewClassifier(log *logger.Logger, llm openai.Client, timeout time.Duration) Classifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &llmClassifier{log: log.With("service", "MoodClassifier"), llm: llm, timeout: timeout}
}

func (c *llmClassifier) Classify(ctx context.Context, variant types.Variant, text string) Classification {
	out := Classification{Variant: variant}
	if c.llm != nil {
		out.Model = c.llm.Model()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return degrade(out, errors.New("empty reply"))
	}
	if c.llm == nil {
		return degrade(out, errors.New("classifier not configured"))
	}

	system := singlePrompt
	if variant == types.VariantDual {
		system = dualPrompt
	}
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.llm.GenerateText(cctx, system, text)
	if err != nil {
		c.log.Warn("Classification degraded", "variant", variant, "error", err.Error())
		return degrade(out, err)
	}
	out.Output = strings.TrimSpace(resp)

	var ok bool
	if variant == types.VariantDual {
		out.Scores.Yesterday, out.Scores.Today, ok = ParseDual(out.Output)
	} else {
		out.Scores.Mood, ok = ParseSingle(out.Output)
	}
	if !ok {
		out.Degraded = true
		c.log.Warn("Classification degraded", "variant", variant, "output", out.Output)
	}
	return out
}

func degrade(c Classification, err error) Classification {
	c.Degraded = true
	c.Scores = types.Scores{Mood: mood.DefaultScore, Yesterday: mood.DefaultScore, Today: mood.DefaultScore}
	if err != nil {
		c.Error = err.Error()
	}
	return c
}

// ParseSingle reads the first integer in s. Missing or out-of-range values
// yield the default score and ok=false.
func ParseSingle(s string) (int, bool) {
	m := firstInt.FindString(s)
	if m == "" {
		return mood.DefaultScore, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || !mood.ValidScore(n) {
		return mood.DefaultScore, false
	}
	return n, true
}

// ParseDual reads the first "a,b" pair in s. Each value is clamped on its
// own; with no pair both are the default score.
func ParseDual(s string) (yesterday, today int, ok bool) {
	m := firstPair.FindStringSubmatch(s)
	if len(m) < 3 {
		return mood.DefaultScore, mood.DefaultScore, false
	}
	a, errA := strconv.Atoi(m[1])
	b, errB := strconv.Atoi(m[2])
	ok = errA == nil && errB == nil && mood.ValidScore(a) && mood.ValidScore(b)
	if errA != nil {
		a = mood.DefaultScore
	}
	if errB != nil {
		b = mood.DefaultScore
	}
	return mood.Clamp(a), mood.Clamp(b), ok
}
