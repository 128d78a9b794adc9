package insight

import "fmt"

// Rule examines a snapshot and returns at most one finding. A nil finding
// with a nil error means the rule did not fire. Rules must not modify the
// snapshot and must not depend on other rules.
type Rule func(s *Snapshot) (*Finding, error)

// Detector is a named rule in the registry.
type Detector struct {
	Kind Kind
	Rule Rule
}

// Registry is an ordered set of detectors. Registration order is the output
// order of a detection run.
type Registry struct {
	detectors []Detector
}

// NewRegistry builds a registry from the given detectors. Kinds must be
// unique and every detector must carry a rule.
func NewRegistry(detectors ...Detector) (*Registry, error) {
	seen := make(map[Kind]bool, len(detectors))
	for _, d := range detectors {
		if d.Kind == "" {
			return nil, fmt.Errorf("detector with empty kind")
		}
		if d.Rule == nil {
			return nil, fmt.Errorf("detector %s has no rule", d.Kind)
		}
		if seen[d.Kind] {
			return nil, fmt.Errorf("duplicate detector kind %s", d.Kind)
		}
		seen[d.Kind] = true
	}
	list := make([]Detector, len(detectors))
	copy(list, detectors)
	return &Registry{detectors: list}, nil
}

// BuiltinDetectors returns the five built-in detectors in canonical order.
func BuiltinDetectors(th Thresholds) []Detector {
	return []Detector{
		{Kind: KindSalesDrop, Rule: SalesDrop(th)},
		{Kind: KindDataInconsistency, Rule: DataInconsistency(th)},
		{Kind: KindPerformanceIssue, Rule: PerformanceIssue(th)},
		{Kind: KindLowDataVolume, Rule: LowDataVolume(th)},
		{Kind: KindLargeDateRange, Rule: LargeDateRange(th)},
	}
}

// NewBuiltinRegistry returns a registry holding the built-in detectors.
func NewBuiltinRegistry(th Thresholds) *Registry {
	r, err := NewRegistry(BuiltinDetectors(th)...)
	if err != nil {
		panic(err)
	}
	return r
}

// Kinds returns the registered kinds in order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, len(r.detectors))
	for i, d := range r.detectors {
		kinds[i] = d.Kind
	}
	return kinds
}

// Len returns the number of registered detectors.
func (r *Registry) Len() int {
	return len(r.detectors)
}
