package repositories

// Repository aggregates the per-entity repositories so services depend on a
// single seam that tests can mock.
type Repository interface {
	Events() EventRepository
	Analyses() AnalysisRepository
}
