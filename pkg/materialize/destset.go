package materialize

// DestinationSet tracks which plugin owns each destination path within one
// reconciliation run. The copying phase is sequential, so the set needs no
// locking; it exists to make first-declared-wins deterministic.
type DestinationSet struct {
	owners map[string]string
}

// NewDestinationSet returns an empty set.
func NewDestinationSet() *DestinationSet {
	return &DestinationSet{owners: map[string]string{}}
}

// Seed claims paths for an owner without copying, used to pre-load the
// recorded files of plugins that are not part of this run.
func (s *DestinationSet) Seed(owner string, paths []string) {
	for _, path := range paths {
		if _, ok := s.owners[path]; !ok {
			s.owners[path] = owner
		}
	}
}

// Add claims a single path for an owner.
func (s *DestinationSet) Add(owner, path string) {
	s.owners[path] = owner
}

// Owner reports which plugin claimed path, if any.
func (s *DestinationSet) Owner(path string) (string, bool) {
	owner, ok := s.owners[path]
	return owner, ok
}

// Release drops every path owned by owner, used when a plugin's files are
// removed ahead of re-copying during an upgrade.
func (s *DestinationSet) Release(owner string) {
	for path, o := range s.owners {
		if o == owner {
			delete(s.owners, path)
		}
	}
}
