package retrieval

import (
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/router"
)

// Monitor provides hooks to observe the retrieval pipeline.
// Implement this interface to trace how a question moves through each
// stage of one query.
type Monitor interface {
	Start(question string)
	AfterRoute(intent router.Intent)
	AfterExpansion(queries []string)
	AfterSemanticMerge(results []core.SearchResult)
	KeywordInjected(result core.SearchResult)
	AfterBoost(results []core.SearchResult)
	NeighborIntroduced(result core.SearchResult)
	RoleGateDropped(result core.SearchResult)
	TermGateDropped(result core.SearchResult)
	FallbackTriggered()
	Finish(evidence []core.Evidence)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterRoute(_ router.Intent)            {}
func (n *noopMonitor) AfterExpansion(_ []string)             {}
func (n *noopMonitor) AfterSemanticMerge(_ []core.SearchResult) {}
func (n *noopMonitor) KeywordInjected(_ core.SearchResult)   {}
func (n *noopMonitor) AfterBoost(_ []core.SearchResult)      {}
func (n *noopMonitor) NeighborIntroduced(_ core.SearchResult) {}
func (n *noopMonitor) RoleGateDropped(_ core.SearchResult)   {}
func (n *noopMonitor) TermGateDropped(_ core.SearchResult)   {}
func (n *noopMonitor) FallbackTriggered()                    {}
func (n *noopMonitor) Finish(_ []core.Evidence)              {}
