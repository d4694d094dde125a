package transcript

// Tier is a list of phrases that each add Weight when found in a segment.
// Tag prefixes the reason token, e.g. "explain:the idea is".
type Tier struct {
	Tag     string   `yaml:"tag"`
	Weight  float64  `yaml:"weight"`
	Phrases []string `yaml:"phrases"`
}

// DensityTier scores vocabulary density: Weight per distinct term,
// applied only when at least MinDistinct terms are present.
type DensityTier struct {
	Tag         string   `yaml:"tag"`
	Weight      float64  `yaml:"weight"`
	MinDistinct int      `yaml:"min_distinct"`
	Terms       []string `yaml:"terms"`
}

// LengthBonus is added when a segment has more than Words words. Bonuses stack.
type LengthBonus struct {
	Words int     `yaml:"words"`
	Bonus float64 `yaml:"bonus"`
}

type Taxonomy struct {
	Explanation   Tier          `yaml:"explanation"`
	Process       Tier          `yaml:"process"`
	Realization   Tier          `yaml:"realization"`
	Technical     DensityTier   `yaml:"technical"`
	Length        []LengthBonus `yaml:"length"`
	QABonus       float64       `yaml:"qa_bonus"`
	MinScore      float64       `yaml:"min_score"`
	MergeGap      float64       `yaml:"merge_gap"`
	LeadIn        float64       `yaml:"lead_in"`
	LeadOut       float64       `yaml:"lead_out"`
	SentenceSpace float64       `yaml:"sentence_spacing"`
}

// RealizationTag is the reason prefix fusion looks for to spot aha moments.
const RealizationTag = "aha"

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Explanation: Tier{
			Tag:    "explain",
			Weight: 3.0,
			Phrases: []string{
				"so what we're doing here",
				"let me explain",
				"the reason is",
				"the reason why",
				"the way this works",
				"what this does",
				"the idea is",
				"in other words",
				"the key thing",
				"here's how",
				"this is because",
				"what's happening here",
			},
		},
		Process: Tier{
			Tag:    "process",
			Weight: 1.5,
			Phrases: []string{
				"now we",
				"next we",
				"first we",
				"then we",
				"we're going to",
				"i'm going to",
				"let's go ahead",
				"let's add",
				"let's run",
				"step one",
				"moving on",
			},
		},
		Realization: Tier{
			Tag:    RealizationTag,
			Weight: 4.0,
			Phrases: []string{
				"that's why",
				"now i see",
				"that makes sense",
				"it works",
				"there we go",
				"turns out",
				"i get it",
				"that's the trick",
				"found the bug",
				"that was the problem",
			},
		},
		Technical: DensityTier{
			Tag:         "tech",
			Weight:      0.5,
			MinDistinct: 2,
			Terms: []string{
				"function",
				"variable",
				"database",
				"server",
				"compiler",
				"interface",
				"endpoint",
				"goroutine",
				"algorithm",
				"docker",
				"kubernetes",
				"query",
				"struct",
				"memory",
				"thread",
				"cache",
				"deploy",
				"schema",
			},
		},
		Length: []LengthBonus{
			{Words: 30, Bonus: 1.0},
			{Words: 50, Bonus: 1.5},
		},
		QABonus:       1.0,
		MinScore:      2,
		MergeGap:      15,
		LeadIn:        3,
		LeadOut:       5,
		SentenceSpace: 5,
	}
}
