package ui

// Status symbols for toolchain runs and console notices.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolProgress = "◐"
	SymbolComplete = "●"
	SymbolSkipped  = "⊘"
)
