package pipeline

// FilterPolicy controls how a filter resolves ambiguity: either drop the
// profile outright or let it through for a later stage to judge.
type FilterPolicy int

const (
	// StrictReject drops profiles the filter cannot positively verify.
	StrictReject FilterPolicy = iota
	// LenientDefaultPass keeps profiles the filter cannot positively verify.
	LenientDefaultPass
)

func (p FilterPolicy) String() string {
	if p == LenientDefaultPass {
		return "lenient"
	}
	return "strict"
}

// QualificationPolicy is the per-filter ambiguity policy for a pipeline run.
// Location fails closed on a missing country; the authority and industry
// checks pass unknowns and drop only on explicit disqualifiers.
type QualificationPolicy struct {
	Location  FilterPolicy
	Authority FilterPolicy
	Industry  FilterPolicy
}

// DefaultPolicy returns the standard qualification policy.
func DefaultPolicy() QualificationPolicy {
	return QualificationPolicy{
		Location:  StrictReject,
		Authority: LenientDefaultPass,
		Industry:  LenientDefaultPass,
	}
}
