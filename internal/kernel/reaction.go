package kernel

// RuleID is an opaque handle for the reaction rule that fired. The kernel
// never inspects rule contents — model definition and rule parsing are an
// external collaborator's concern (spec §1).
type RuleID string

// ReactionInfo is the uniform read model of "one reaction that just fired",
// expressed in the producing engine's representation (spec §3). The
// Translator rewrites a ReactionInfo from one representation to another.
type ReactionInfo struct {
	T         float64
	Reactants []Molecule
	Products  []Molecule
}

// ReactionRecord pairs a ReactionInfo with the rule that produced it, the
// shape engines return from LastReactions().
type ReactionRecord struct {
	Rule RuleID
	Info ReactionInfo
}
