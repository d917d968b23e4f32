package classifier

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`)

// Classifier turns free-form completions into bounded classifications. It never
// returns an error: transport and decode failures fall back to Default.
type Classifier struct {
	llm         core.Completer
	concurrency int
}

func NewClassifier(llm core.Completer, concurrency int) *Classifier {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Classifier{
		llm:         llm,
		concurrency: concurrency,
	}
}

// Classify asks the model once to describe text. userContext, when set, is the
// user turn that text answered.
func (c *Classifier) Classify(ctx context.Context, text, userContext string) core.NarrativeClassification {
	logger := log.Component(ctx, "classifier")

	completion, err := c.llm.Complete(ctx, buildClassifyPrompt(text, userContext))
	if err != nil {
		logger.Warn().Err(err).Msg("completion failed, using default classification")
		return Default()
	}

	doc, ok := parseDocument(completion)
	if !ok {
		logger.Warn().Str("completion", completion).Msg("unparseable classification, using default")
		return Default()
	}

	return doc.classification()
}

// ClassifyBatch classifies every text concurrently. The result has the same order
// as texts.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) []core.NarrativeClassification {
	out := make([]core.NarrativeClassification, len(texts))

	limit := c.concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, text := range texts {
		g.Go(func() error {
			out[i] = c.Classify(ctx, text, "")
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Similarity asks the model for a rating in [0,1]. Any failure yields 0.
func (c *Classifier) Similarity(ctx context.Context, a, b string) float64 {
	logger := log.Component(ctx, "classifier")

	completion, err := c.llm.Complete(ctx, buildSimilarityPrompt(a, b))
	if err != nil {
		logger.Warn().Err(err).Msg("similarity completion failed")
		return 0
	}

	score, ok := parseLeadingFloat(completion)
	if !ok {
		logger.Warn().Str("completion", completion).Msg("non-numeric similarity")
		return 0
	}
	return core.ClampImportance(score)
}

func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
