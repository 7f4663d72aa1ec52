package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"go.uber.org/zap"
)

// Limits bound one test-case execution. MemoryMB is advisory where the
// platform cannot enforce it; the runner classifies kills either way.
type Limits struct {
	WallClock time.Duration
	MemoryMB  int
}

// Execution is the raw result of running candidate code against one input.
// Outcome is empty when the program ran to completion; Output is then its
// stdout. A non-empty Outcome names the failure classification.
type Execution struct {
	Output    string
	Outcome   entities.VerdictOutcome
	Error     string
	RuntimeMs int64
}

// Runner executes candidate code against one input under the given limits.
// Implementations must never share state between runs.
type Runner interface {
	Run(ctx context.Context, code, input string, limits Limits) Execution
}

type Judge struct {
	runners map[string]Runner
	limits  Limits
}

func New(limits Limits, runners map[string]Runner) *Judge {
	if limits.WallClock <= 0 {
		limits.WallClock = 5 * time.Second
	}
	if limits.MemoryMB <= 0 {
		limits.MemoryMB = 256
	}
	return &Judge{runners: runners, limits: limits}
}

// Evaluate runs the candidate solution over the cases in stored order and
// always returns a verdict; execution faults become RuntimeError, never an
// error to the caller. An empty case set is trivially accepted.
func (j *Judge) Evaluate(ctx context.Context, code, language string, cases []entities.TestCase) entities.JudgeVerdict {
	// An empty case set passes vacuously.
	if len(cases) == 0 {
		return entities.JudgeVerdict{
			Outcome:        entities.OutcomeAccepted,
			ScorePercent:   100,
			PerTestResults: []entities.TestResult{},
		}
	}

	runner, ok := j.runners[language]
	if !ok {
		return entities.JudgeVerdict{
			TotalCount: len(cases),
			Outcome:    entities.OutcomeRuntimeError,
			PerTestResults: failAll(cases,
				fmt.Sprintf("unsupported language %q", language)),
		}
	}

	verdict := entities.JudgeVerdict{
		TotalCount:     len(cases),
		PerTestResults: make([]entities.TestResult, 0, len(cases)),
	}
	var passedWeight, totalWeight float64

	for i, tc := range cases {
		weight := tc.Weight
		if weight <= 0 {
			weight = 1
		}
		totalWeight += weight

		exec := runner.Run(ctx, code, tc.Input, j.limits)
		verdict.TotalRuntimeMs += exec.RuntimeMs

		result := entities.TestResult{RuntimeMs: exec.RuntimeMs}
		switch {
		case exec.Outcome != "":
			if verdict.Outcome == "" {
				verdict.Outcome = exec.Outcome
			}
			result.Error = exec.Error
		case outputsMatch(exec.Output, tc.ExpectedOutput):
			result.Passed = true
			verdict.PassedCount++
			passedWeight += weight
		default:
			result.ObservedOutput = exec.Output
		}
		if tc.Hidden {
			// Hidden cases surface pass/fail and runtime only.
			result.ObservedOutput = ""
			result.Error = ""
		}
		verdict.PerTestResults = append(verdict.PerTestResults, result)

		logging.Debug("test case judged",
			zap.Int("case", i),
			zap.Bool("passed", result.Passed),
			zap.Int64("runtime_ms", exec.RuntimeMs),
		)
	}

	if totalWeight > 0 {
		verdict.ScorePercent = 100 * passedWeight / totalWeight
	} else {
		verdict.ScorePercent = 100
	}
	if verdict.PassedCount == verdict.TotalCount {
		verdict.Outcome = entities.OutcomeAccepted
		verdict.ScorePercent = 100
	} else if verdict.Outcome == "" {
		verdict.Outcome = entities.OutcomeWrongAnswer
	}
	return verdict
}

// SupportedLanguages lists the languages this judge can run.
func (j *Judge) SupportedLanguages() []string {
	langs := make([]string, 0, len(j.runners))
	for name := range j.runners {
		langs = append(langs, name)
	}
	return langs
}

func failAll(cases []entities.TestCase, reason string) []entities.TestResult {
	results := make([]entities.TestResult, len(cases))
	for i, tc := range cases {
		if !tc.Hidden {
			results[i].Error = reason
		}
	}
	return results
}
