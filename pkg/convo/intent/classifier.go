package intent

import (
	"context"
	"log"
	"strings"
	"time"

	"agent-sim-be/pkg/nlu"
	"agent-sim-be/pkg/timeout"
)

// affirmatives and negatives cover English and Arabic short replies. Used
// both by the start-intent fallback and by the yes/no confirmation states.
var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true,
	"okay": true, "go": true, "start": true, "begin": true, "launch": true,
	"confirm": true, "proceed": true, "do": true, "it": true,
	"نعم": true, "اجل": true, "أجل": true, "تمام": true, "موافق": true,
	"اكيد": true, "أكيد": true, "ابدأ": true, "ابدا": true, "يلا": true,
	"انطلق": true, "طيب": true,
}

var negatives = map[string]bool{
	"no": true, "nope": true, "nah": true, "cancel": true, "stop": true,
	"dont": true, "don't": true, "discard": true, "never": true,
	"لا": true, "كلا": true, "الغاء": true, "إلغاء": true, "توقف": true,
	"ارفض": true, "أرفض": true,
}

// Classifier wraps the two bounded-timeout turn classifiers. Both are
// read-only with respect to slot state and both degrade to deterministic
// heuristics; neither ever returns an error to the dispatcher.
type Classifier struct {
	client nlu.Client
	budget time.Duration
	logger *log.Logger
}

func NewClassifier(client nlu.Client, budget time.Duration, logger *log.Logger) *Classifier {
	return &Classifier{client: client, budget: budget, logger: logger}
}

// StartIntent decides whether the turn means "begin the simulation now".
// Fallback heuristic: five tokens or fewer, at least one of them from the
// bilingual affirmative list, none from the negative list.
func (c *Classifier) StartIntent(ctx context.Context, turn, shortContext string) bool {
	start, err := timeout.Race(ctx, c.budget, func(cc context.Context) (bool, error) {
		return c.client.DetectStartIntent(cc, turn, shortContext)
	})
	if err != nil {
		c.logger.Printf("[INTENT] start-intent call failed, using heuristic: %v", err)
		return startHeuristic(turn)
	}
	return start
}

// MessageMode decides whether a turn during a running simulation is an
// update to apply or a question to discuss. Fallback heuristic: a question
// mark (either alphabet) means discuss, anything else means update.
func (c *Classifier) MessageMode(ctx context.Context, turn, shortContext, locale string) nlu.MessageMode {
	mode, err := timeout.Race(ctx, c.budget, func(cc context.Context) (nlu.MessageMode, error) {
		return c.client.DetectMessageMode(cc, turn, shortContext, locale)
	})
	if err != nil {
		c.logger.Printf("[INTENT] message-mode call failed, using heuristic: %v", err)
		return modeHeuristic(turn)
	}
	return mode
}

// Affirmative reports whether a short turn reads as a yes.
func Affirmative(turn string) bool {
	toks := tokens(turn)
	if len(toks) == 0 || len(toks) > 5 {
		return false
	}
	hit := false
	for _, t := range toks {
		if negatives[t] {
			return false
		}
		if affirmatives[t] {
			hit = true
		}
	}
	return hit
}

// Negative reports whether a short turn reads as a no.
func Negative(turn string) bool {
	toks := tokens(turn)
	if len(toks) == 0 || len(toks) > 5 {
		return false
	}
	for _, t := range toks {
		if negatives[t] {
			return true
		}
	}
	return false
}

func startHeuristic(turn string) bool {
	return Affirmative(turn)
}

func modeHeuristic(turn string) nlu.MessageMode {
	if strings.ContainsAny(turn, "?؟") {
		return nlu.ModeDiscuss
	}
	return nlu.ModeUpdate
}

func tokens(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', '؟', '،':
			return ' '
		}
		return r
	}, strings.ToLower(s))
	return strings.Fields(cleaned)
}
