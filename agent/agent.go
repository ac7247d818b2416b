package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/wikipedia"
)

const (
	// ModelLight is used on or before the switch date.
	ModelLight = "llama2:7b"
	// ModelFull is used after the switch date.
	ModelFull = "llama2"
)

// modelSwitchDate is the date after which the more capable model is
// selected.
var modelSwitchDate = time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)

// ModelForDate returns the Ollama model to use at the given time. Only
// the date part is compared.
func ModelForDate(now time.Time) string {
	y, m, d := now.Date()
	if time.Date(y, m, d, 0, 0, 0, 0, time.UTC).After(modelSwitchDate) {
		return ModelFull
	}
	return ModelLight
}

// DefaultQuestion is the question the agent command runs when none is
// provided.
const DefaultQuestion = "Tom M. Mitchell is an American computer scientist and the Founders University Professor at Carnegie Mellon University (CMU) what book did he write?"

const (
	maxIterations    = 3
	executionTimeout = 60 * time.Second
)

// Runner executes a zero-shot reasoning agent bound to a calculator and
// a Wikipedia lookup tool.
type Runner struct {
	executor *agents.Executor
}

// New builds the tools and the bounded agent executor around llm.
// userAgent identifies the client to the Wikipedia API.
func New(llm llms.Model, userAgent string) (*Runner, error) {
	agentTools := []tools.Tool{
		tools.Calculator{},
		wikipedia.New(userAgent),
	}
	executor, err := agents.Initialize(llm, agentTools, agents.ZeroShotReactDescription,
		agents.WithMaxIterations(maxIterations))
	if err != nil {
		return nil, fmt.Errorf("agent: failed to initialize executor: %w", err)
	}
	return &Runner{executor: executor}, nil
}

// Run answers a single question, bounded by the iteration limit and a
// wall-clock timeout.
func (r *Runner) Run(ctx context.Context, question string) (answer string, err error) {
	ctx, cancel := context.WithTimeout(ctx, executionTimeout)
	defer cancel()
	answer, err = chains.Run(ctx, r.executor, question, chains.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("agent: run failed: %w", err)
	}
	return answer, nil
}
