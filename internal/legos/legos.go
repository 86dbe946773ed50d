// Package legos locates and parses the optional per-page geometry descriptors
// (".legos" files): a YAML preamble, a "---" marker line, then a body of
// LDraw line records that are passed through untouched.
package legos

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	Extension = ".legos"
	marker    = "---"
)

// ErrAmbiguousDescriptor is returned in strict mode when more than one
// descriptor matches a page index.
var ErrAmbiguousDescriptor = errors.New("ambiguous geometry descriptor")

// Meta is the decoded preamble. Unknown keys are kept in Raw.
type Meta struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Raw         map[string]any `yaml:"-"`
}

type Descriptor struct {
	Path    string
	Meta    Meta
	HasBody bool     // a "---" marker was found
	Lines   []string // retained geometry lines, in file order
}

// Empty reports whether the descriptor contributes no geometry. A missing
// marker and a body without digit-led lines are treated the same.
func (d *Descriptor) Empty() bool {
	return d == nil || !d.HasBody || len(d.Lines) == 0
}

// Pattern returns the glob a descriptor for pageIndex must match.
func Pattern(pageIndex int) string {
	return fmt.Sprintf("scene_%02d_*%s", pageIndex, Extension)
}

type Resolver struct {
	Dir    string
	Strict bool
	Logger *slog.Logger
}

func NewResolver(dir string, strict bool, logger *slog.Logger) *Resolver {
	return &Resolver{Dir: dir, Strict: strict, Logger: logger}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Match lists the descriptor file names for pageIndex in lexical order.
// A missing directory yields no matches.
func (r *Resolver) Match(pageIndex int) ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read descriptor dir: %w", err)
	}

	pattern := Pattern(pageIndex)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the descriptor for pageIndex, or nil when none exists.
// Content problems never produce an error; only I/O failures and, in strict
// mode, ambiguous matches do.
func (r *Resolver) Resolve(pageIndex int) (*Descriptor, error) {
	names, err := r.Match(pageIndex)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) > 1 {
		if r.Strict {
			return nil, fmt.Errorf("%w: page %d matches %s", ErrAmbiguousDescriptor, pageIndex, strings.Join(names, ", "))
		}
		r.logger().Warn("multiple geometry descriptors, using first",
			"page", pageIndex, "selected", names[0], "ignored", names[1:])
	}

	path := filepath.Join(r.Dir, names[0])
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open descriptor: %w", err)
	}
	defer f.Close()

	d, err := Parse(f, r.logger())
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", names[0], err)
	}
	d.Path = path
	r.logger().Debug("geometry descriptor found", "page", pageIndex, "file", names[0], "lines", len(d.Lines))
	return d, nil
}

// Parse splits a descriptor at the first "---" line. Everything before it is
// preamble, even lines that look like geometry. Lines have no length limit.
// A nil logger uses slog.Default.
func Parse(r io.Reader, logger *slog.Logger) (*Descriptor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Descriptor{}
	var preamble strings.Builder

	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			text := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
			line := strings.TrimSpace(text)
			switch {
			case !d.HasBody && line == marker:
				d.HasBody = true
			case !d.HasBody:
				preamble.WriteString(text)
				preamble.WriteByte('\n')
			case isGeometry(line):
				d.Lines = append(d.Lines, line)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	d.Meta = parseMeta(preamble.String(), logger)
	return d, nil
}

func isGeometry(line string) bool {
	return line != "" && line[0] >= '0' && line[0] <= '9'
}

// parseMeta decodes the preamble; a preamble that is not a YAML mapping
// leaves Meta empty.
func parseMeta(text string, logger *slog.Logger) Meta {
	var m Meta
	if strings.TrimSpace(text) == "" {
		return m
	}
	if err := yaml.Unmarshal([]byte(text), &m); err != nil {
		logger.Debug("descriptor preamble is not YAML", "err", err)
		return Meta{}
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal([]byte(text), &raw); err == nil {
		m.Raw = raw
	}
	return m
}

// YAML re-encodes the preamble with sorted keys, or returns "" when it was
// empty or unreadable.
func (m Meta) YAML() string {
	if len(m.Raw) == 0 {
		return ""
	}
	out, err := yaml.Marshal(m.Raw)
	if err != nil {
		return ""
	}
	return string(out)
}
