package gitx

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
)

// Fixture is the canned state of one remote repository served by
// MemoryBackend.
type Fixture struct {
	// Branches and Tags map ref names to commit shas.
	Branches map[string]string
	Tags     map[string]string

	// Head is the commit sha of the default branch.
	Head string

	// Files are written into the clone directory, keyed by path relative
	// to the repository root.
	Files map[string]string

	// CloneErr and CheckoutErr force the respective operations to fail.
	CloneErr    error
	CheckoutErr error
}

// MemoryBackend is a Backend fake keyed by source URL. It writes fixture
// files to disk on clone so the materializer sees a real directory, and it
// records every call for assertions. Safe for concurrent use.
type MemoryBackend struct {
	mu       sync.Mutex
	fixtures map[string]*Fixture
	bySource map[string]string // dest -> source
	clones   []string
	checkout map[string]string // dest -> rev
}

// NewMemoryBackend returns an empty fake; add remotes with AddFixture.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		fixtures: map[string]*Fixture{},
		bySource: map[string]string{},
		checkout: map[string]string{},
	}
}

// AddFixture registers the canned repository served for source.
func (m *MemoryBackend) AddFixture(source string, fixture *Fixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures[source] = fixture
}

// Register marks dest as an existing clone of source without writing any
// files, for tests that start from an already-installed state.
func (m *MemoryBackend) Register(source, dest string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bySource[dest] = source
}

// CloneCalls returns the sources cloned so far, in call order.
func (m *MemoryBackend) CloneCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.clones...)
}

// CheckedOut returns the rev last checked out in dest, if any.
func (m *MemoryBackend) CheckedOut(dest string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.checkout[dest]
	return rev, ok
}

func (m *MemoryBackend) Clone(ctx context.Context, source, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	fixture, ok := m.fixtures[source]
	if ok && fixture.CloneErr == nil {
		m.clones = append(m.clones, source)
		m.bySource[dest] = source
	}
	m.mu.Unlock()

	if !ok {
		return pezerrors.Newf(pezerrors.ErrCloneFailed, "unknown remote %s", source)
	}
	if fixture.CloneErr != nil {
		return pezerrors.Wrapf(fixture.CloneErr, pezerrors.ErrCloneFailed,
			"failed to clone %s", source)
	}

	for rel, content := range fixture.Files {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	if len(fixture.Files) == 0 {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryBackend) ListRefs(ctx context.Context, dest string) (Refs, error) {
	if err := ctx.Err(); err != nil {
		return Refs{}, err
	}
	fixture, err := m.fixtureFor(dest)
	if err != nil {
		return Refs{}, err
	}

	refs := Refs{Branches: map[string]string{}, Tags: map[string]string{}}
	for name, sha := range fixture.Branches {
		refs.Branches[name] = sha
	}
	for name, sha := range fixture.Tags {
		refs.Tags[name] = sha
	}
	return refs, nil
}

func (m *MemoryBackend) DefaultHead(ctx context.Context, dest string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fixture, err := m.fixtureFor(dest)
	if err != nil {
		return "", err
	}
	if fixture.Head == "" {
		return "", pezerrors.New(pezerrors.ErrRefNotFound,
			"cannot determine the default branch head")
	}
	return fixture.Head, nil
}

func (m *MemoryBackend) Checkout(ctx context.Context, dest, rev string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fixture, err := m.fixtureFor(dest)
	if err != nil {
		return "", err
	}
	if fixture.CheckoutErr != nil {
		return "", pezerrors.Wrapf(fixture.CheckoutErr, pezerrors.ErrRefNotFound,
			"failed to check out %q", rev)
	}

	m.mu.Lock()
	m.checkout[dest] = rev
	m.mu.Unlock()
	return rev, nil
}

func (m *MemoryBackend) fixtureFor(dest string) (*Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.bySource[dest]
	if !ok {
		return nil, pezerrors.Newf(pezerrors.ErrCloneFailed,
			"no repository cloned at %s", dest)
	}
	return m.fixtures[source], nil
}
