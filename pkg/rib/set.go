package rib

// LineSet is a set of route lines that remembers first-insertion order.
// Iteration order never depends on map ordering, so every set operation
// produces the same output for the same input.
type LineSet struct {
	index map[string]struct{}
	lines []string
}

// NewLineSet builds a set from lines, keeping the first occurrence of each.
func NewLineSet(lines ...string) *LineSet {
	s := &LineSet{index: make(map[string]struct{}, len(lines))}
	for _, l := range lines {
		s.Add(l)
	}
	return s
}

// Add inserts line and reports whether it was not already present.
func (s *LineSet) Add(line string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[line]; ok {
		return false
	}
	s.index[line] = struct{}{}
	s.lines = append(s.lines, line)
	return true
}

// Contains reports membership. A nil set contains nothing.
func (s *LineSet) Contains(line string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[line]
	return ok
}

// Len returns the number of unique lines.
func (s *LineSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines)
}

// Lines returns a copy of the members in insertion order.
func (s *LineSet) Lines() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Intersect returns the members of s also in o, in s's order.
func (s *LineSet) Intersect(o *LineSet) *LineSet {
	return s.filter(func(l string) bool { return o.Contains(l) })
}

// Difference returns the members of s not in o, in s's order.
func (s *LineSet) Difference(o *LineSet) *LineSet {
	return s.filter(func(l string) bool { return !o.Contains(l) })
}

func (s *LineSet) filter(keep func(string) bool) *LineSet {
	out := NewLineSet()
	if s == nil {
		return out
	}
	for _, l := range s.lines {
		if keep(l) {
			out.Add(l)
		}
	}
	return out
}
