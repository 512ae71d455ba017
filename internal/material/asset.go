package material

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/conn-castle/rigkit/internal/codec"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/fsutil"
)

// Color is an RGBA color with components in [0, 1].
type Color [4]float64

// Alpha is the fourth component.
func (c Color) Alpha() float64 { return c[3] }

// Texture references an image asset.
type Texture struct {
	Path     string `json:"path" yaml:"path"`
	HasAlpha bool   `json:"hasAlpha,omitempty" yaml:"hasAlpha,omitempty"`
}

// Material is a material asset document.
type Material struct {
	Name        string             `json:"name" yaml:"name"`
	Shader      string             `json:"shader" yaml:"shader"`
	RenderQueue int                `json:"renderQueue,omitempty" yaml:"renderQueue,omitempty"`
	Keywords    []string           `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Floats      map[string]float64 `json:"floats,omitempty" yaml:"floats,omitempty"`
	Colors      map[string]Color   `json:"colors,omitempty" yaml:"colors,omitempty"`
	Textures    map[string]Texture `json:"textures,omitempty" yaml:"textures,omitempty"`
}

// HasProperty reports whether any property table defines name.
func (m *Material) HasProperty(name string) bool {
	_, f := m.Floats[name]
	_, c := m.Colors[name]
	_, t := m.Textures[name]
	return f || c || t
}

// SetFloat writes a float property.
func (m *Material) SetFloat(name string, v float64) {
	if m.Floats == nil {
		m.Floats = map[string]float64{}
	}
	m.Floats[name] = v
}

// EnableKeyword adds kw once.
func (m *Material) EnableKeyword(kw string) {
	if !slices.Contains(m.Keywords, kw) {
		m.Keywords = append(m.Keywords, kw)
	}
}

// DisableKeyword removes every occurrence of kw.
func (m *Material) DisableKeyword(kw string) {
	m.Keywords = slices.DeleteFunc(m.Keywords, func(k string) bool { return k == kw })
}

// Clone returns a deep copy.
func (m *Material) Clone() *Material {
	out := *m
	out.Keywords = slices.Clone(m.Keywords)
	out.Floats = maps.Clone(m.Floats)
	out.Colors = maps.Clone(m.Colors)
	out.Textures = maps.Clone(m.Textures)
	return &out
}

// Model is a model descriptor: a name and the material assets it uses, relative
// to the descriptor's directory.
type Model struct {
	Name      string   `json:"name" yaml:"name"`
	Materials []string `json:"materials" yaml:"materials"`
}

// Store is a directory-backed asset store. Writes are staged by CreateAsset and
// flushed by SaveAll.
type Store struct {
	root    string
	log     *slog.Logger
	pending map[string]*Material
}

// NewStore opens the store rooted at root. A nil logger discards output.
func NewStore(root string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{root: root, log: log, pending: map[string]*Material{}}
}

// Root is the store's base directory.
func (s *Store) Root() string { return s.root }

// Abs resolves an asset path against the store root.
func (s *Store) Abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

// LoadModel reads a model descriptor and resolves its material paths.
func (s *Store) LoadModel(path string) (*Model, error) {
	var m Model
	if err := s.decode(path, &m); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i, p := range m.Materials {
		if !filepath.IsAbs(p) {
			m.Materials[i] = filepath.Join(dir, p)
		}
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &m, nil
}

// FindAssetAtPath returns the material at path, preferring a staged write. A
// missing file is ErrNotFound.
func (s *Store) FindAssetAtPath(path string) (*Material, error) {
	if m, ok := s.pending[s.Abs(path)]; ok {
		return m.Clone(), nil
	}
	var m Material
	if err := s.decode(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateAsset stages m to be written at path.
func (s *Store) CreateAsset(m *Material, path string) error {
	if _, err := codec.FormatFor(path); err != nil {
		return err
	}
	s.pending[s.Abs(path)] = m.Clone()
	return nil
}

// CopyProperties copies every property, keyword, and the render queue of src
// into dst. The shader and name of dst are kept.
func CopyProperties(src *Material, dst *Material) {
	if len(src.Floats) > 0 && dst.Floats == nil {
		dst.Floats = map[string]float64{}
	}
	maps.Copy(dst.Floats, src.Floats)
	if len(src.Colors) > 0 && dst.Colors == nil {
		dst.Colors = map[string]Color{}
	}
	maps.Copy(dst.Colors, src.Colors)
	if len(src.Textures) > 0 && dst.Textures == nil {
		dst.Textures = map[string]Texture{}
	}
	maps.Copy(dst.Textures, src.Textures)
	for _, kw := range src.Keywords {
		dst.EnableKeyword(kw)
	}
	dst.RenderQueue = src.RenderQueue
}

// Pending is the number of staged writes.
func (s *Store) Pending() int { return len(s.pending) }

// Discard drops staged writes.
func (s *Store) Discard() {
	clear(s.pending)
}

// SaveAll writes staged assets in path order. Staged entries that were written
// are cleared even when a later write fails.
func (s *Store) SaveAll() error {
	paths := slices.Sorted(maps.Keys(s.pending))
	for _, p := range paths {
		format, err := codec.FormatFor(p)
		if err != nil {
			return err
		}
		data, err := codec.Encode(s.pending[p], format)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", errkind.ErrUnexpected, p, err)
		}
		if err := fsutil.WriteFileAtomic(p, data, 0o644); err != nil {
			return errkind.IOf("write "+p, err)
		}
		delete(s.pending, p)
		s.log.Debug("saved asset", "path", p)
	}
	return nil
}

func (s *Store) decode(path string, v any) error {
	abs := s.Abs(path)
	format, err := codec.FormatFor(abs)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: asset %s", errkind.ErrNotFound, path)
		}
		return errkind.IOf("read "+path, err)
	}
	if err := codec.Decode(data, format, v); err != nil {
		return fmt.Errorf("asset %s: %w", path, err)
	}
	return nil
}
