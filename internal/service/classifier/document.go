package classifier

import (
	"math"
	"strconv"
	"strings"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/tidwall/gjson"
)

const (
	defaultImportance      = 0.5
	defaultEmotion         = 0.0
	defaultFocusArea       = "general"
	defaultInteractionType = "general"
	defaultUserState       = "unknown"
	defaultSceneDetails    = "none"
)

// Default is returned whenever a completion can't be decoded.
func Default() core.NarrativeClassification {
	return core.NarrativeClassification{
		Observation:     "",
		Importance:      defaultImportance,
		EmotionScore:    defaultEmotion,
		FocusArea:       defaultFocusArea,
		InteractionType: defaultInteractionType,
		SuggestedLinks:  []string{},
	}
}

// document is the raw, untrusted completion body. Every accessor takes a default
// and never fails.
type document struct {
	root gjson.Result
}

// parseDocument extracts the outermost JSON object from a completion. Models often
// wrap the object in prose or code fences.
func parseDocument(completion string) (document, bool) {
	start := strings.Index(completion, "{")
	if start == -1 {
		return document{}, false
	}
	end := strings.LastIndex(completion, "}")
	if end < start {
		return document{}, false
	}

	raw := completion[start : end+1]
	if !gjson.Valid(raw) {
		return document{}, false
	}

	root := gjson.Parse(raw)
	if !root.IsObject() {
		return document{}, false
	}
	return document{root: root}, true
}

// String returns the field as text, or def when it is absent or falsy.
func (d document) String(field, def string) string {
	v := d.root.Get(field)
	if !truthy(v) {
		return def
	}
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

// Number returns the field as a float, or def when it is absent, falsy or not numeric.
// Only a JSON 0 is falsy; the string "0" is a present value of zero.
func (d document) Number(field string, def float64) float64 {
	v := d.root.Get(field)
	if !truthy(v) {
		return def
	}

	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.True:
		return 1
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(n) {
			return def
		}
		return n
	default:
		return def
	}
}

// Strings returns the string elements of an array field. Anything that isn't an
// array yields an empty slice.
func (d document) Strings(field string) []string {
	v := d.root.Get(field)
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type == gjson.String && item.Str != "" {
			out = append(out, item.Str)
		}
	}
	return out
}

func (d document) classification() core.NarrativeClassification {
	return core.NarrativeClassification{
		Observation:     d.String("observation", ""),
		UserState:       d.String("user_state", defaultUserState),
		SceneDetails:    d.String("scene_details", defaultSceneDetails),
		Importance:      core.ClampImportance(d.Number("importance", defaultImportance)),
		EmotionScore:    core.ClampEmotion(d.Number("emotion_score", defaultEmotion)),
		FocusArea:       d.String("focus_area", defaultFocusArea),
		InteractionType: d.String("interaction_type", defaultInteractionType),
		SuggestedLinks:  d.Strings("suggested_links"),
	}
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case gjson.String:
		return v.Str != ""
	default:
		return true
	}
}
