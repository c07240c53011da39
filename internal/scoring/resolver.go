package scoring

// Resolver answers the weight lookups the scoring engine needs for one
// assignment: the area weight behind a question, the option a response
// selected, and the maximum non-N/A option weight offered for a question.
// All reads, no side effects.
type Resolver interface {
	// AreaWeight returns the weight of the area owning the question
	AreaWeight(questionID uint) (float64, bool)
	// Option returns the selected option's frozen definition
	Option(optionID uint) (OptionSnapshot, bool)
	// MaxOptionWeight returns the maximum weight across the non-N/A options
	// offered for the question
	MaxOptionWeight(questionID uint) (float64, bool)
}

// TreeResolver resolves lookups against a Snapshot. For assignments carrying a
// frozen snapshot this is the authoritative path; for legacy assignments
// without one, the caller builds the resolver from the live questionnaire tree
// instead, accepting that the result drifts if admins edit weights afterwards.
type TreeResolver struct {
	areaWeightByQuestion map[uint]float64
	optionByID           map[uint]OptionSnapshot
	maxWeightByQuestion  map[uint]float64
}

// NewTreeResolver indexes a snapshot for O(1) lookups
func NewTreeResolver(snap *Snapshot) *TreeResolver {
	r := &TreeResolver{
		areaWeightByQuestion: make(map[uint]float64),
		optionByID:           make(map[uint]OptionSnapshot),
		maxWeightByQuestion:  make(map[uint]float64),
	}

	for _, area := range snap.Areas {
		for _, question := range area.Questions {
			r.areaWeightByQuestion[question.ID] = area.Weight

			maxWeight := 0.0
			hasNonNA := false
			for _, option := range question.Options {
				r.optionByID[option.ID] = option
				if option.IsNA {
					continue
				}
				if !hasNonNA || option.Weight > maxWeight {
					maxWeight = option.Weight
					hasNonNA = true
				}
			}
			if hasNonNA {
				r.maxWeightByQuestion[question.ID] = maxWeight
			}
		}
	}

	return r
}

// AreaWeight returns the weight of the area owning the question
func (r *TreeResolver) AreaWeight(questionID uint) (float64, bool) {
	w, ok := r.areaWeightByQuestion[questionID]
	return w, ok
}

// Option returns the option definition by id
func (r *TreeResolver) Option(optionID uint) (OptionSnapshot, bool) {
	o, ok := r.optionByID[optionID]
	return o, ok
}

// MaxOptionWeight returns the maximum non-N/A option weight for the question
func (r *TreeResolver) MaxOptionWeight(questionID uint) (float64, bool) {
	w, ok := r.maxWeightByQuestion[questionID]
	return w, ok
}
