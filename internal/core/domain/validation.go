package domain

// DirectQuestion is answerable from the corpus. The answer must contain
// every required substring (matched case-insensitively).
type DirectQuestion struct {
	Question string `toml:"question"`

	// RequiredSubstrings must all appear in the answer.
	RequiredSubstrings []string `toml:"required"`
}

// AdversarialQuestion deliberately references entities absent from the
// corpus. A grounded system must refuse rather than fabricate.
type AdversarialQuestion struct {
	Question string `toml:"question"`

	// ForbiddenTokens are fabricated-entity markers that must NOT appear
	// in the answer. Any hit fails the check regardless of refusal wording.
	ForbiddenTokens []string `toml:"forbidden"`
}

// ValidationSuite is a fixed battery of direct and adversarial questions
// together with the refusal markers the corpus owner recognises.
type ValidationSuite struct {
	// Markers are the accepted "no information available" phrases.
	// At least one must appear in every adversarial answer. The set is
	// configurable because the exact wording is environment-specific.
	Markers []string `toml:"markers"`

	Direct      []DirectQuestion      `toml:"direct"`
	Adversarial []AdversarialQuestion `toml:"adversarial"`
}

// Questions returns the total number of questions in the suite.
func (s ValidationSuite) Questions() int {
	return len(s.Direct) + len(s.Adversarial)
}

// ValidationOutcome is the per-question result of a validation run.
// Derived data: it is reported, never persisted as primary state.
type ValidationOutcome struct {
	Question string
	Passed   bool
	Reason   string
}

// ValidationReport aggregates a validation run.
type ValidationReport struct {
	Outcomes []ValidationOutcome

	// Healthy is true only when every check passed.
	Healthy bool

	// PassRate is passed/total, reported even for unhealthy runs so
	// progress stays observable.
	PassRate float64
}
