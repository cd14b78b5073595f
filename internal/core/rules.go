package core

import "assetcore/pkg/domain"

// NewRulesEngine constructs an empty rules engine. Callers register rules
// explicitly; most code wants NewDefaultRulesEngine instead.
func NewRulesEngine() *domain.RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine constructs an engine loaded with the built-in
// lifecycle invariants every production store should enforce.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewStatusValuesRule())
	engine.Register(NewAssignmentConsistencyRule())
	engine.Register(NewDisposedTerminalRule())
	engine.Register(NewAccountabilityUniquenessRule())
	engine.Register(NewDisposalUniquenessRule())
	return engine
}
