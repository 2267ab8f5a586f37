package config

// Config holds solver and driver parameters for the curve bootstrap.
type Config struct {
	// SolverTolerance is the absolute tolerance on the implied-DF root.
	SolverTolerance float64

	// MaxSolverIterations is the iteration budget for the bracketed solver.
	MaxSolverIterations int

	// BracketFloor is the lower edge of the DF(T) search bracket. It doubles
	// as the clamp floor for the fallback result.
	BracketFloor float64

	// MinDiscountFactor is the floor applied to solved pillars before they
	// enter the store, preventing log underflow downstream.
	MinDiscountFactor float64

	// MinRowsPerDate is the smallest instrument cross-section a valuation
	// date must carry; thinner dates are skipped without error.
	MinRowsPerDate int
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	SolverTolerance:     1e-14,
	MaxSolverIterations: 200,
	BracketFloor:        1e-14,
	MinDiscountFactor:   1e-12,
	MinRowsPerDate:      5,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}
