package detect

import (
	"context"
	"regexp"
	"strings"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// Detector scores free text against the keyword taxonomy. The taxonomy
// is compiled once at construction and never mutated, so a single
// Detector is safe for concurrent use.
type Detector struct {
	categories []compiledCategory
}

type compiledCategory struct {
	crisisType types.CrisisType
	keywords   []compiledKeyword
}

type compiledKeyword struct {
	phrase string
	tier   types.KeywordTier
	re     *regexp.Regexp // nil for CONTEXTUAL (plain substring)
}

// Option is a functional option for Detector configuration
type Option func(*options)

type options struct {
	taxonomy []Category
}

// WithTaxonomy replaces the built-in keyword table, preserving the
// declaration order of the given categories.
func WithTaxonomy(taxonomy []Category) Option {
	return func(o *options) {
		o.taxonomy = taxonomy
	}
}

// New compiles a Detector from the built-in taxonomy, or from the
// table supplied via WithTaxonomy.
func New(opts ...Option) *Detector {
	o := &options{taxonomy: DefaultTaxonomy()}
	for _, opt := range opts {
		opt(o)
	}

	d := &Detector{
		categories: make([]compiledCategory, 0, len(o.taxonomy)),
	}
	for _, cat := range o.taxonomy {
		cc := compiledCategory{crisisType: cat.Type}
		for _, kw := range cat.High {
			cc.keywords = append(cc.keywords, compileKeyword(kw, types.TierHigh))
		}
		for _, kw := range cat.Medium {
			cc.keywords = append(cc.keywords, compileKeyword(kw, types.TierMedium))
		}
		for _, kw := range cat.Contextual {
			cc.keywords = append(cc.keywords, compiledKeyword{
				phrase: strings.ToLower(kw),
				tier:   types.TierContextual,
			})
		}
		d.categories = append(d.categories, cc)
	}
	return d
}

func compileKeyword(phrase string, tier types.KeywordTier) compiledKeyword {
	lowered := strings.ToLower(phrase)
	return compiledKeyword{
		phrase: lowered,
		tier:   tier,
		re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(lowered) + `\b`),
	}
}

// Detect scans text against every category of the taxonomy and returns
// the strongest-scoring candidate. Ties are broken by taxonomy
// declaration order. The only side effect is a warning-level log entry
// when a crisis is detected.
func (d *Detector) Detect(ctx context.Context, text string) *model.Detection {
	notDetected := &model.Detection{}

	if strings.TrimSpace(text) == "" {
		return notDetected
	}
	lowered := strings.ToLower(text)

	type candidate struct {
		crisisType types.CrisisType
		score      int
		priority   types.KeywordTier
		matched    []string
	}

	var best *candidate
	for _, cat := range d.categories {
		var c candidate
		for _, kw := range cat.keywords {
			var hit bool
			if kw.re != nil {
				hit = kw.re.MatchString(lowered)
			} else {
				hit = strings.Contains(lowered, kw.phrase)
			}
			if !hit {
				continue
			}
			c.score += kw.tier.Weight()
			c.matched = append(c.matched, kw.phrase)
			if c.priority == "" || kw.tier.Outranks(c.priority) {
				c.priority = kw.tier
			}
		}
		if c.score == 0 {
			continue
		}
		c.crisisType = cat.crisisType
		// Strictly-greater comparison keeps the first-declared
		// category on ties.
		if best == nil || c.score > best.score {
			cc := c
			best = &cc
		}
	}

	if best == nil {
		return notDetected
	}

	confidence := float64(best.score) / 10
	if confidence > 1 {
		confidence = 1
	}

	result := &model.Detection{
		Detected:        true,
		CrisisType:      best.crisisType,
		MatchedKeywords: best.matched,
		Confidence:      confidence,
		Priority:        best.priority,
		SuggestedAction: suggestedActionFor(best.crisisType, best.priority),
		ShowResources:   best.priority == types.TierHigh || confidence > 0.5,
	}

	logging.From(ctx).Warn("crisis signal detected",
		"crisis_type", result.CrisisType,
		"matched_keywords", result.MatchedKeywords,
		"confidence", result.Confidence,
		"priority", result.Priority,
	)

	return result
}

func suggestedActionFor(crisisType types.CrisisType, tier types.KeywordTier) string {
	if byTier, ok := suggestedActions[crisisType]; ok {
		if msg, ok := byTier[tier]; ok {
			return msg
		}
	}
	return genericAction
}

// DetectReferences checks whether text mentions emergency numbers or
// helpline services. Purely lexical; no scoring.
func (d *Detector) DetectReferences(text string) *model.ReferenceCheck {
	lowered := strings.ToLower(text)

	check := &model.ReferenceCheck{}
	for _, num := range emergencyNumbers {
		if containsWord(lowered, num) {
			check.HasEmergencyNumbers = true
			break
		}
	}
	for _, kw := range helplineKeywords {
		if strings.Contains(lowered, kw) {
			check.HasHelplineReferences = true
			break
		}
	}
	return check
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
