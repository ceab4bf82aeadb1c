package slots

import "strings"

// Field identifies one slot of the simulation configuration.
type Field string

const (
	FieldIdea           Field = "idea"
	FieldCountry        Field = "country"
	FieldCity           Field = "city"
	FieldCategory       Field = "category"
	FieldTargetAudience Field = "target_audience"
	FieldGoals          Field = "goals"
	FieldRiskAppetite   Field = "risk_appetite"
	FieldIdeaMaturity   Field = "idea_maturity"
)

// requiredOrder is the fixed order of the missing-slot view. Maturity and
// risk appetite are optional for start-readiness and never appear in it.
var requiredOrder = []Field{
	FieldIdea,
	FieldCountry,
	FieldCity,
	FieldCategory,
	FieldTargetAudience,
	FieldGoals,
}

// State is the configuration object being filled by conversation.
// Fields the user set explicitly are tracked in Touched; inferred merges
// never overwrite a touched field.
type State struct {
	Idea           string   `json:"idea"`
	Category       string   `json:"category"`
	TargetAudience []string `json:"target_audience"`
	Country        string   `json:"country"`
	City           string   `json:"city"`
	RiskAppetite   int      `json:"risk_appetite"`
	IdeaMaturity   string   `json:"idea_maturity"`
	Goals          []string `json:"goals"`

	Touched map[Field]bool `json:"touched"`
}

// New returns an empty state with the default risk appetite.
func New() *State {
	return &State{
		RiskAppetite: 50,
		Touched:      make(map[Field]bool),
	}
}

// Proposal carries inferred values from an extraction. Nil pointers and
// empty slices mean "no proposal for this field".
type Proposal struct {
	Idea           *string
	Country        *string
	City           *string
	Category       *string
	TargetAudience []string
	Goals          []string
	RiskAppetite   *int
	IdeaMaturity   *string
}

// Empty reports whether the proposal carries no values at all.
func (p Proposal) Empty() bool {
	return p.Idea == nil && p.Country == nil && p.City == nil &&
		p.Category == nil && len(p.TargetAudience) == 0 && len(p.Goals) == 0 &&
		p.RiskAppetite == nil && p.IdeaMaturity == nil
}

// MergeInferred applies a proposal to every untouched field it covers and
// returns the fields that actually changed. Touched fields keep their
// value regardless of what was proposed.
func (s *State) MergeInferred(p Proposal) []Field {
	var changed []Field

	setStr := func(f Field, dst *string, v *string) {
		if v == nil || s.Touched[f] {
			return
		}
		nv := strings.TrimSpace(*v)
		if nv == "" || nv == *dst {
			return
		}
		*dst = nv
		changed = append(changed, f)
	}

	setStr(FieldIdea, &s.Idea, p.Idea)
	setStr(FieldCountry, &s.Country, p.Country)
	setStr(FieldCity, &s.City, p.City)
	setStr(FieldCategory, &s.Category, p.Category)
	setStr(FieldIdeaMaturity, &s.IdeaMaturity, p.IdeaMaturity)

	if len(p.TargetAudience) > 0 && !s.Touched[FieldTargetAudience] {
		s.TargetAudience = append([]string(nil), p.TargetAudience...)
		changed = append(changed, FieldTargetAudience)
	}
	if len(p.Goals) > 0 && !s.Touched[FieldGoals] {
		s.Goals = append([]string(nil), p.Goals...)
		changed = append(changed, FieldGoals)
	}
	if p.RiskAppetite != nil && !s.Touched[FieldRiskAppetite] && *p.RiskAppetite != s.RiskAppetite {
		s.RiskAppetite = *p.RiskAppetite
		changed = append(changed, FieldRiskAppetite)
	}

	return changed
}

// SetExplicit writes a user-provided value and marks the field touched.
// Slice values must be passed for set-valued fields, strings otherwise;
// RiskAppetite takes an int.
func (s *State) SetExplicit(f Field, value any) {
	switch f {
	case FieldIdea:
		s.Idea, _ = value.(string)
	case FieldCountry:
		s.Country, _ = value.(string)
	case FieldCity:
		s.City, _ = value.(string)
	case FieldCategory:
		s.Category, _ = value.(string)
	case FieldIdeaMaturity:
		s.IdeaMaturity, _ = value.(string)
	case FieldTargetAudience:
		if v, ok := value.([]string); ok {
			s.TargetAudience = append([]string(nil), v...)
		}
	case FieldGoals:
		if v, ok := value.([]string); ok {
			s.Goals = append([]string(nil), v...)
		}
	case FieldRiskAppetite:
		if v, ok := value.(int); ok {
			s.RiskAppetite = v
		}
	default:
		return
	}
	if s.Touched == nil {
		s.Touched = make(map[Field]bool)
	}
	s.Touched[f] = true
}

// IsTouched reports whether the user explicitly set the field.
func (s *State) IsTouched(f Field) bool {
	return s.Touched[f]
}

// TouchedFields returns the explicitly set fields in the canonical field
// order, so callers get a stable view of what inference may not overwrite.
func (s *State) TouchedFields() []Field {
	all := []Field{
		FieldIdea, FieldCountry, FieldCity, FieldCategory,
		FieldTargetAudience, FieldGoals, FieldRiskAppetite, FieldIdeaMaturity,
	}
	out := make([]Field, 0, len(s.Touched))
	for _, f := range all {
		if s.Touched[f] {
			out = append(out, f)
		}
	}
	return out
}

// filled reports whether a required field currently holds a value.
func (s *State) filled(f Field) bool {
	switch f {
	case FieldIdea:
		return strings.TrimSpace(s.Idea) != ""
	case FieldCountry:
		return strings.TrimSpace(s.Country) != ""
	case FieldCity:
		return strings.TrimSpace(s.City) != ""
	case FieldCategory:
		return s.Category != ""
	case FieldTargetAudience:
		return len(s.TargetAudience) > 0
	case FieldGoals:
		return len(s.Goals) > 0
	}
	return true
}

// Missing returns the ordered list of required fields that are still empty.
// It is a pure function of the current field values and is recomputed on
// demand, never stored.
func (s *State) Missing() []Field {
	var missing []Field
	for _, f := range requiredOrder {
		if !s.filled(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Ready reports whether every required slot is filled.
func (s *State) Ready() bool {
	return len(s.Missing()) == 0
}

// Clone returns a deep copy, used when a snapshot must not observe later
// mutations (e.g. extraction context).
func (s *State) Clone() *State {
	c := *s
	c.TargetAudience = append([]string(nil), s.TargetAudience...)
	c.Goals = append([]string(nil), s.Goals...)
	c.Touched = make(map[Field]bool, len(s.Touched))
	for k, v := range s.Touched {
		c.Touched[k] = v
	}
	return &c
}
