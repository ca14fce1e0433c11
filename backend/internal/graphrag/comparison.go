package graphrag

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"sage-clone/backend/pkg/logger"
)

// ComparisonOutcome is one strategy's side of a comparison run
type ComparisonOutcome struct {
	Strategy Strategy     `json:"strategy"`
	Result   *QueryResult `json:"result,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ComparisonResult holds both strategies' outcomes for the same query
type ComparisonResult struct {
	Direct    ComparisonOutcome `json:"direct"`
	Retriever ComparisonOutcome `json:"retriever"`
}

// Comparison runs the two retrieval strategies side by side over the same
// query so their answers and confidence can be inspected together. It is an
// evaluation harness, not part of the query contract: each side runs a full
// independent pipeline, and one side failing never touches the other.
type Comparison struct {
	direct    *Orchestrator
	retriever *Orchestrator
	logger    *zap.Logger
}

// NewComparison wires a comparison harness from two orchestrators
func NewComparison(direct, retriever *Orchestrator) *Comparison {
	return &Comparison{
		direct:    direct,
		retriever: retriever,
		logger:    logger.Get(),
	}
}

// Run executes both pipelines concurrently and joins on both
func (c *Comparison) Run(ctx context.Context, ownerID, query string) *ComparisonResult {
	result := &ComparisonResult{
		Direct:    ComparisonOutcome{Strategy: StrategyDirect},
		Retriever: ComparisonOutcome{Strategy: StrategyRetriever},
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		res, err := c.direct.ExecuteQuery(ctx, ownerID, query)
		if err != nil {
			c.logger.Warn("Direct strategy failed during comparison", zap.Error(err))
			result.Direct.Error = err.Error()
			return
		}
		result.Direct.Result = res
	}()

	go func() {
		defer wg.Done()
		res, err := c.retriever.ExecuteQuery(ctx, ownerID, query)
		if err != nil {
			c.logger.Warn("Retriever strategy failed during comparison", zap.Error(err))
			result.Retriever.Error = err.Error()
			return
		}
		result.Retriever.Result = res
	}()

	wg.Wait()
	return result
}
