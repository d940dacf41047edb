package types

// CompareRef identifies a two-ref comparison in a hosted repository.
type CompareRef struct {
	Host    string
	Project string // owner/repo on GitHub, the full group path on GitLab
	Base    string
	Head    string
}
