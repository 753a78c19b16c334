package shader

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Stage is a shader pipeline stage.
type Stage int

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	if s == Fragment {
		return "fragment"
	}
	return "vertex"
}

// ErrNoSource is returned for a shader name without source.
var ErrNoSource = errors.New("shader source not found")

// Compiler compiles stages and links programs. The GL implementation lives in
// this package; tests supply fakes.
type Compiler interface {
	CompileStage(stage Stage, source string) (uint32, error)
	LinkProgram(vertex, fragment uint32) (uint32, error)
}

// Key identifies one compiled stage: source name plus sorted defines.
type Key struct {
	Stage   Stage
	Source  string
	Defines string
}

// NewKey builds a key from an unsorted define list.
func NewKey(stage Stage, source string, defines []string) Key {
	sorted := slices.Clone(defines)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return Key{Stage: stage, Source: source, Defines: strings.Join(sorted, ";")}
}

func (k Key) String() string {
	return k.Stage.String() + ":" + k.Source + "[" + k.Defines + "]"
}

type stageResult struct {
	id  uint32
	err error
}

type programKey struct {
	vertex, fragment Key
}

// Cache memoizes compiled stages and linked programs. Failures are cached too, so
// a broken permutation is compiled once and then skipped.
type Cache struct {
	compiler Compiler
	sources  map[string]string
	stages   map[Key]stageResult
	programs map[programKey]stageResult
}

// NewCache creates a cache over the given named sources.
func NewCache(c Compiler, sources map[string]string) *Cache {
	return &Cache{
		compiler: c,
		sources:  sources,
		stages:   make(map[Key]stageResult),
		programs: make(map[programKey]stageResult),
	}
}

// Stage returns the compiled stage for key.
func (c *Cache) Stage(key Key) (uint32, error) {
	if r, ok := c.stages[key]; ok {
		return r.id, r.err
	}

	var r stageResult
	src, ok := c.sources[key.Source]
	if !ok {
		r.err = fmt.Errorf("%w: %s", ErrNoSource, key.Source)
	} else {
		r.id, r.err = c.compiler.CompileStage(key.Stage, InjectDefines(src, splitDefines(key.Defines)))
		if r.err != nil {
			r.err = fmt.Errorf("compiling %s: %w", key, r.err)
		}
	}
	c.stages[key] = r
	return r.id, r.err
}

// Program returns the linked program for a vertex and fragment permutation.
func (c *Cache) Program(vertex, fragment Key) (uint32, error) {
	pk := programKey{vertex, fragment}
	if r, ok := c.programs[pk]; ok {
		return r.id, r.err
	}

	var r stageResult
	vs, err := c.Stage(vertex)
	if err != nil {
		r.err = err
	} else if fs, err := c.Stage(fragment); err != nil {
		r.err = err
	} else {
		r.id, r.err = c.compiler.LinkProgram(vs, fs)
		if r.err != nil {
			r.err = fmt.Errorf("linking %s + %s: %w", vertex, fragment, r.err)
		}
	}
	c.programs[pk] = r
	return r.id, r.err
}

// Len returns the number of cached stages.
func (c *Cache) Len() int {
	return len(c.stages)
}

// InjectDefines inserts one #define line per define right after the #version
// directive, or at the top when there is none. A define "NAME value" becomes
// "#define NAME value".
func InjectDefines(src string, defines []string) string {
	if len(defines) == 0 {
		return src
	}
	var b strings.Builder
	for _, d := range defines {
		b.WriteString("#define ")
		b.WriteString(d)
		b.WriteByte('\n')
	}

	i := strings.Index(src, "#version")
	if i < 0 {
		return b.String() + src
	}
	eol := strings.IndexByte(src[i:], '\n')
	if eol < 0 {
		return src + "\n" + b.String()
	}
	cut := i + eol + 1
	return src[:cut] + b.String() + src[cut:]
}

func splitDefines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
