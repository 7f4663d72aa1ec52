package entities

// TestCase is one judged input/output pair. Hidden cases never leak their
// input or expected output into anything surfaced to a player.
type TestCase struct {
	Input          string  `dynamodbav:"Input" json:"input"`
	ExpectedOutput string  `dynamodbav:"ExpectedOutput" json:"expectedOutput"`
	Weight         float64 `dynamodbav:"Weight" json:"weight"`
	Hidden         bool    `dynamodbav:"Hidden" json:"hidden"`
}

type Problem struct {
	ProblemId        string     `dynamodbav:"ProblemId" json:"problemId"`
	Title            string     `dynamodbav:"Title" json:"title"`
	Statement        string     `dynamodbav:"Statement" json:"statement"`
	TimeLimitSeconds int        `dynamodbav:"TimeLimitSeconds" json:"timeLimitSeconds"`
	Languages        []string   `dynamodbav:"Languages" json:"languages"`
	TestCases        []TestCase `dynamodbav:"TestCases" json:"testCases"`
	Active           bool       `dynamodbav:"Active" json:"active"`
}

// ProblemSummary is the player-facing slice of a problem: statement and
// visible sample cases only.
type ProblemSummary struct {
	ProblemId        string     `json:"problemId"`
	Title            string     `json:"title"`
	Statement        string     `json:"statement"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
	Languages        []string   `json:"languages"`
	SampleCases      []TestCase `json:"sampleCases"`
}

func (p Problem) Summary() ProblemSummary {
	samples := make([]TestCase, 0, len(p.TestCases))
	for _, tc := range p.TestCases {
		if !tc.Hidden {
			samples = append(samples, tc)
		}
	}
	return ProblemSummary{
		ProblemId:        p.ProblemId,
		Title:            p.Title,
		Statement:        p.Statement,
		TimeLimitSeconds: p.TimeLimitSeconds,
		Languages:        p.Languages,
		SampleCases:      samples,
	}
}
