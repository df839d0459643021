package coupon

import "fmt"

// mapRuleSet implements RuleSet using a map for O(1) lookups.
type mapRuleSet struct {
	rules map[string]Rule
}

// NewRuleSet builds a rule set, rejecting invalid or duplicate rules.
func NewRuleSet(rules []Rule) (RuleSet, error) {
	set := &mapRuleSet{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		if err := set.add(r); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Get returns the rule for a normalised code.
func (s *mapRuleSet) Get(code string) (Rule, bool) {
	r, ok := s.rules[code]
	return r, ok
}

// Size returns the number of rules in the set.
func (s *mapRuleSet) Size() int {
	return len(s.rules)
}

func (s *mapRuleSet) add(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if _, exists := s.rules[r.Code]; exists {
		return fmt.Errorf("duplicate coupon code %s", r.Code)
	}
	s.rules[r.Code] = r
	return nil
}

// merge adds every rule of other, failing on a code defined twice.
func (s *mapRuleSet) merge(other RuleSet) error {
	o, ok := other.(*mapRuleSet)
	if !ok {
		return fmt.Errorf("unsupported rule set type %T", other)
	}
	for _, r := range o.rules {
		if err := s.add(r); err != nil {
			return err
		}
	}
	return nil
}
