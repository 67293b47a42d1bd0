package classify

import (
	"strings"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// Lexicon holds the keyword sets used by the classifiers. Classifiers copy
// and normalize it on construction; later edits to a Lexicon value do not
// affect classifiers already built from it.
type Lexicon struct {
	Positive     []string    `yaml:"positive"`
	Appreciation []string    `yaml:"appreciation"`
	Negative     []string    `yaml:"negative"`
	Anger        []string    `yaml:"anger"`
	Mixed        []string    `yaml:"mixed"`
	Themes       []ThemeRule `yaml:"themes"`
}

// ThemeRule maps a set of keywords onto a theme. Rules are evaluated in
// order and the first match wins.
type ThemeRule struct {
	Label    mention.Theme `yaml:"label"`
	Keywords []string      `yaml:"keywords"`
}

// DefaultLexicon returns a fresh copy of the built-in keyword sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{
			"good", "great", "excellent", "positive", "love", "awesome", "best", "happy", "like", "amazing", "superb",
			"fantastic", "recommend", "perfect", "thrilled", "delighted", "satisfied", "easy", "seamless",
			"wins", "won", "award", "recognition", "honoured", "named as", "ranked #1", "leading", "top-tier",
			"successful", "successfully", "oversubscribed", "exceeds expectations", "confidence",
			"grows", "growth", "rise", "increase", "expansion", "accelerate", "boost", "outperforms",
			"launches", "unveils", "introduces", "new initiative", "new product", "new feature",
			"profit", "profits", "profitable", "strong performance", "robust", "stronger",
			"upgrades", "stable outlook", "reaffirms", "commitment", "strengthening",
		},
		Appreciation: []string{
			"thank", "thanks", "grateful", "kudos", "congratulations", "congrats", "props", "helpful",
			"appreciate", "appreciation", "lauds", "commends", "praised", "legacy", "honoring",
			"empower", "support", "champions", "donates", "donation", "csr", "esg", "community", "foundation", "sponsors",
		},
		Negative: []string{
			"bad", "poor", "terrible", "negative", "hate", "awful", "worst", "sad", "dislike", "broken",
			"disappointed", "frustrated", "horrible", "useless", "embarrassing",
			"fail", "failed", "issue", "problem", "avoid", "scam", "fraud", "fraudulent", "allegation", "alleges",
			"downtime", "glitch", "glitches", "crashes", "down", "outage", "unauthorized",
			"fined", "sanctioned", "penalty", "lawsuit", "court", "arrest", "efcc",
			"crisis", "vulnerabilities", "threats", "risk", "stifling", "rift",
			"loss", "losses", "decline", "dip", "drop", "slump", "erosion", "undersubscribed",
			"complaint", "complaints", "fume", "laments", "outcry", "slams",
		},
		Anger: []string{
			"angry", "furious", "rage", "mad", "outrage", "pissed", "fuming", "livid", "worst!",
			"stealing", "thieves", "scammed", "disgusted",
		},
		Mixed: []string{
			"but", "however", "although", "yet", "still", "despite", "while", "though",
		},
		Themes: []ThemeRule{
			{Label: mention.ThemeCSR, Keywords: []string{
				"csr", "esg", "donation", "community", "foundation", "initiative", "sustainability", "empower", "scholarship",
			}},
			{Label: mention.ThemeCorporate, Keywords: []string{
				"ceo", "gmd", "profit", "results", "acquisition", "corporate", "raise", "capital", "bond", "earnings",
				"dividend", "financials", "shareholders",
			}},
			{Label: mention.ThemePartnership, Keywords: []string{
				"partner", "sponsorship", "marathon", "zecathon", "collaboration", "champions",
			}},
			{Label: mention.ThemeProduct, Keywords: []string{
				"app", "loan", "card", "customer service", "downtime", "glitch", "e-channel", "transfer", "pos",
				"digital", "feature", "platform",
			}},
			{Label: mention.ThemeLegal, Keywords: []string{
				"fraud", "cbn", "efcc", "fine", "court", "scam", "allegation", "rift", "lawsuit", "crisis",
				"vulnerability", "sanction", "erosion",
			}},
		},
	}
}

// Merge overlays non-empty sets from other onto l and returns the result.
func (l Lexicon) Merge(other Lexicon) Lexicon {
	out := l
	if len(other.Positive) > 0 {
		out.Positive = other.Positive
	}
	if len(other.Appreciation) > 0 {
		out.Appreciation = other.Appreciation
	}
	if len(other.Negative) > 0 {
		out.Negative = other.Negative
	}
	if len(other.Anger) > 0 {
		out.Anger = other.Anger
	}
	if len(other.Mixed) > 0 {
		out.Mixed = other.Mixed
	}
	if len(other.Themes) > 0 {
		out.Themes = other.Themes
	}
	return out
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}
