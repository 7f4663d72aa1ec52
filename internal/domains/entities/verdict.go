package entities

type VerdictOutcome string

const (
	OutcomeAccepted            VerdictOutcome = "Accepted"
	OutcomeWrongAnswer         VerdictOutcome = "WrongAnswer"
	OutcomeTimeLimitExceeded   VerdictOutcome = "TimeLimitExceeded"
	OutcomeMemoryLimitExceeded VerdictOutcome = "MemoryLimitExceeded"
	OutcomeRuntimeError        VerdictOutcome = "RuntimeError"
)

// TestResult reports one case. Hidden cases carry pass/runtime only.
type TestResult struct {
	Passed         bool   `dynamodbav:"Passed" json:"passed"`
	ObservedOutput string `dynamodbav:"ObservedOutput" json:"observedOutput,omitempty"`
	Error          string `dynamodbav:"Error" json:"error,omitempty"`
	RuntimeMs      int64  `dynamodbav:"RuntimeMs" json:"runtimeMs"`
}

// JudgeVerdict is immutable once produced. Outcome is Accepted iff
// PassedCount equals TotalCount.
type JudgeVerdict struct {
	PassedCount    int            `dynamodbav:"PassedCount" json:"passedCount"`
	TotalCount     int            `dynamodbav:"TotalCount" json:"totalCount"`
	ScorePercent   float64        `dynamodbav:"ScorePercent" json:"scorePercent"`
	Outcome        VerdictOutcome `dynamodbav:"Outcome" json:"outcome"`
	PerTestResults []TestResult   `dynamodbav:"PerTestResults" json:"perTestResults"`
	TotalRuntimeMs int64          `dynamodbav:"TotalRuntimeMs" json:"totalRuntimeMs"`
}
