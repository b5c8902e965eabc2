package idgen

// UsedSet holds the ordinals already taken in a namespace.
type UsedSet map[Ordinal]struct{}

// Add marks n as taken.
func (s UsedSet) Add(n Ordinal) {
	s[n] = struct{}{}
}

// Contains reports whether n is taken.
func (s UsedSet) Contains(n Ordinal) bool {
	_, ok := s[n]
	return ok
}

// CollectUsed decodes names and keeps the ordinals of those that belong to
// the codec's alphabet. Anything else is silently ignored.
func CollectUsed(c *Codec, names []string) UsedSet {
	used := make(UsedSet, len(names))
	for _, name := range names {
		if n, ok := c.Decode(name); ok {
			used.Add(n)
		}
	}
	return used
}

// Allocate returns the smallest ordinal not in used.
func Allocate(used UsedSet) Ordinal {
	n := Ordinal(1)
	for used.Contains(n) {
		n++
	}
	return n
}

// Next returns the identifier of the smallest ordinal not spelled by any of
// existing, together with that ordinal.
func Next(c *Codec, existing []string) (string, Ordinal) {
	n := Allocate(CollectUsed(c, existing))
	return c.Encode(n), n
}
