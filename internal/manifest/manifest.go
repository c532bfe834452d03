// Package manifest implements YAML description of tree branches and
// their raw buffers, used as Source by command line tools.
//
// Example:
//
//	entries: 3
//	branches:
//	  - name: n
//	    type: Int_t
//	    data: AAAAAQAAAAIAAAAD
//	  - name: px
//	    title: px[n]/F
//	    file: px.bin
//	    raw_size: 24
package manifest

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-faster/ttree"
	"github.com/go-faster/ttree/compress"
	"github.com/go-faster/ttree/interp"
)

// Manifest describes single tree.
type Manifest struct {
	Entries  int      `yaml:"entries"`
	Branches []Branch `yaml:"branches"`

	// dir is base directory of branch files.
	dir string
}

// Branch describes single branch and location of its data.
type Branch struct {
	Name string `yaml:"name"`
	Path string `yaml:"path,omitempty"`
	// Type is ROOT type name, like "Double32_t" or "vector<int>".
	// Can be omitted for leaf titles with type code.
	Type  string `yaml:"type,omitempty"`
	Title string `yaml:"title,omitempty"`
	// Split marks object branch with member branches.
	Split   bool     `yaml:"split,omitempty"`
	Members []string `yaml:"members,omitempty"`
	// Counter branch name, defaults to counter from title.
	Counter string `yaml:"counter,omitempty"`

	// Data is base64 encoded branch buffer.
	Data string `yaml:"data,omitempty"`
	// File with branch buffer, relative to manifest.
	File string `yaml:"file,omitempty"`
	// RawSize is uncompressed size of buffer if it is compressed.
	RawSize int     `yaml:"raw_size,omitempty"`
	Offsets []int64 `yaml:"offsets,omitempty"`
}

// Parse manifest. Files are resolved relative to dir.
func Parse(data []byte, dir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate")
	}
	m.dir = dir
	return &m, nil
}

// Open reads and parses manifest file.
func Open(name string) (*Manifest, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return Parse(data, filepath.Dir(name))
}

// Validate reports whether manifest is consistent.
func (m *Manifest) Validate() error {
	if m.Entries < 0 {
		return errors.Errorf("negative entries %d", m.Entries)
	}
	seen := map[string]struct{}{}
	for i, b := range m.Branches {
		if b.Name == "" {
			return errors.Errorf("branch %d: no name", i)
		}
		if _, ok := seen[b.Name]; ok {
			return errors.Errorf("branch %q: duplicate", b.Name)
		}
		seen[b.Name] = struct{}{}
		if b.Data != "" && b.File != "" {
			return errors.Errorf("branch %q: both data and file set", b.Name)
		}
		if b.RawSize < 0 {
			return errors.Errorf("branch %q: negative raw size", b.Name)
		}
	}
	return nil
}

// Interpretation of branch.
func (b Branch) Interpretation() (interp.Interpretation, error) {
	i, err := interp.ParseType(b.Type, b.Title)
	if err != nil {
		return nil, err
	}
	if obj, ok := i.(interp.AsObject); ok && b.Split {
		obj.Split = true
		return obj, nil
	}
	return i, nil
}

func (m *Manifest) buffer(b Branch) ([]byte, error) {
	var data []byte
	switch {
	case b.File != "":
		name := b.File
		if !filepath.IsAbs(name) {
			name = filepath.Join(m.dir, name)
		}
		buf, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.Wrap(err, "read")
		}
		data = buf
	case b.Data != "":
		buf, err := base64.StdEncoding.DecodeString(b.Data)
		if err != nil {
			return nil, errors.Wrap(err, "base64")
		}
		data = buf
	}
	if b.RawSize == 0 {
		return data, nil
	}
	raw, err := compress.Decompress(data, b.RawSize)
	if err != nil {
		return nil, errors.Wrap(err, "decompress")
	}
	return raw, nil
}

// Source loads buffers of all branches.
func (m *Manifest) Source(ctx context.Context) (*ttree.MemorySource, error) {
	src := ttree.NewMemorySource(m.Entries)
	for _, b := range m.Branches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i, err := b.Interpretation()
		if err != nil {
			return nil, errors.Wrapf(err, "branch %q: interpretation", b.Name)
		}
		data, err := m.buffer(b)
		if err != nil {
			return nil, errors.Wrapf(err, "branch %q: data", b.Name)
		}
		counter := b.Counter
		if counter == "" {
			counter = interp.CounterName(b.Title)
		}
		if err := src.Add(ttree.Branch{
			Name:           b.Name,
			Path:           b.Path,
			Interpretation: i,
			Members:        b.Members,
			Counter:        counter,
		}, interp.Input{
			Data:    data,
			Offsets: b.Offsets,
		}); err != nil {
			return nil, errors.Wrapf(err, "branch %q", b.Name)
		}
	}
	return src, nil
}
