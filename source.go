package ttree

import (
	"context"
	"sort"
	"strings"

	"github.com/go-faster/errors"

	"github.com/go-faster/ttree/interp"
)

// Branch describes single branch of tree.
type Branch struct {
	// Name of branch, unique in tree.
	Name string
	// Path is full path of branch from tree root, like "evt/P3/P3.Py".
	// Defaults to Name.
	Path string
	// Interpretation of branch data.
	Interpretation interp.Interpretation
	// Members are names of member branches of split object, in order of
	// record fields. Field names are member names relative to Name.
	Members []string
	// Counter is name of branch with per-entry element counts, used for
	// variable length arrays without byte offsets.
	Counter string
}

// Source provides branches of single tree and their decompressed data.
//
// Source is the I/O collaborator of Tree: reading of files, keys and
// baskets is done by implementation.
type Source interface {
	// Entries returns count of entries of tree.
	Entries() int
	// Names returns names of all branches.
	Names() []string
	// Branch returns branch by name.
	Branch(name string) (Branch, bool)
	// Input returns decompressed data of branch.
	Input(ctx context.Context, name string) (interp.Input, error)
}

// MemorySource is Source backed by in-memory buffers.
//
// Not safe for concurrent Add, safe for concurrent reads.
type MemorySource struct {
	entries  int
	names    []string
	branches map[string]Branch
	inputs   map[string]interp.Input
}

var _ Source = (*MemorySource)(nil)

// NewMemorySource initializes empty source of entries.
func NewMemorySource(entries int) *MemorySource {
	return &MemorySource{
		entries:  entries,
		branches: map[string]Branch{},
		inputs:   map[string]interp.Input{},
	}
}

// Add branch with provided data. Input.Entries is set to the count of
// entries of source if zero.
func (s *MemorySource) Add(b Branch, in interp.Input) error {
	if b.Name == "" {
		return errors.New("branch without name")
	}
	if _, ok := s.branches[b.Name]; ok {
		return errors.Errorf("duplicate branch %q", b.Name)
	}
	if b.Interpretation == nil {
		return errors.Errorf("branch %q without interpretation", b.Name)
	}
	for _, m := range b.Members {
		if m == b.Name {
			return errors.Errorf("branch %q is member of itself", b.Name)
		}
	}
	if b.Counter == b.Name && b.Counter != "" {
		return errors.Errorf("branch %q is counter of itself", b.Name)
	}
	if b.Path == "" {
		b.Path = b.Name
	}
	if in.Entries == 0 {
		in.Entries = s.entries
	}
	s.names = append(s.names, b.Name)
	s.branches[b.Name] = b
	s.inputs[b.Name] = in
	return nil
}

// Entries returns count of entries.
func (s *MemorySource) Entries() int { return s.entries }

// Names returns names of branches in order of addition.
func (s *MemorySource) Names() []string {
	return append([]string(nil), s.names...)
}

// Branch returns branch by name.
func (s *MemorySource) Branch(name string) (Branch, bool) {
	b, ok := s.branches[name]
	return b, ok
}

// Input returns data of branch.
func (s *MemorySource) Input(ctx context.Context, name string) (interp.Input, error) {
	if err := ctx.Err(); err != nil {
		return interp.Input{}, err
	}
	in, ok := s.inputs[name]
	if !ok {
		return interp.Input{}, &interp.NotFoundError{Name: name}
	}
	return in, nil
}

const (
	refVisiting = iota + 1
	refDone
)

// checkRefs reports missing or cyclic member and counter references
// reachable from name, marking checked branches in state.
func checkRefs(src Source, state map[string]int, name string) error {
	switch state[name] {
	case refVisiting:
		return &interp.MalformedError{Msg: "cyclic reference to branch " + name}
	case refDone:
		return nil
	}
	b, ok := src.Branch(name)
	if !ok {
		return &interp.NotFoundError{Name: name}
	}
	state[name] = refVisiting
	refs := b.Members
	if b.Counter != "" {
		refs = append(refs[:len(refs):len(refs)], b.Counter)
	}
	for _, ref := range refs {
		if err := checkRefs(src, state, ref); err != nil {
			return errors.Wrapf(err, "%q", name)
		}
	}
	state[name] = refDone
	return nil
}

// findPath returns name of branch with provided path.
//
// Exact path match wins, then branch name, then the shortest path
// ending with "/"+path.
func findPath(src Source, path string) (string, bool) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", false
	}
	var (
		byName   string
		suffixes []string
	)
	for _, name := range src.Names() {
		b, ok := src.Branch(name)
		if !ok {
			continue
		}
		p := strings.Trim(b.Path, "/")
		if p == "" {
			p = b.Name
		}
		switch {
		case p == path:
			return name, true
		case name == path:
			byName = name
		case strings.HasSuffix(p, "/"+path):
			suffixes = append(suffixes, name)
		}
	}
	if byName != "" {
		return byName, true
	}
	if len(suffixes) == 0 {
		return "", false
	}
	sort.SliceStable(suffixes, func(i, j int) bool {
		bi, _ := src.Branch(suffixes[i])
		bj, _ := src.Branch(suffixes[j])
		return len(bi.Path) < len(bj.Path)
	})
	return suffixes[0], true
}
