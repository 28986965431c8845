// Package include expands the mysql client's SOURCE and \. directives so that a
// desired schema can be split across several files.
package include

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrCircularInclude is returned when a file includes itself, directly or transitively
var ErrCircularInclude = errors.New("circular include")

// Matches "SOURCE path;", "source 'path'" and "\. path" on a line of their own
var includeRegex = regexp.MustCompile(`(?i)^\s*(?:SOURCE\s+|\\\.\s*)(?:'([^']+)'|"([^"]+)"|([^\s;]+))\s*;?\s*$`)

// Processor resolves include directives relative to the including file.
// Included files must live under the directory of the top-level file.
type Processor struct {
	baseDir string
	stack   map[string]bool
}

// NewProcessor creates a processor rooted at baseDir
func NewProcessor(baseDir string) *Processor {
	return &Processor{
		baseDir: baseDir,
		stack:   make(map[string]bool),
	}
}

// ProcessFile reads filename and returns its content with every include expanded in place
func (p *Processor) ProcessFile(filename string) (string, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}
	p.baseDir = filepath.Dir(absPath)
	p.stack = make(map[string]bool)

	return p.processFile(absPath)
}

func (p *Processor) processFile(filename string) (string, error) {
	if p.stack[filename] {
		return "", fmt.Errorf("%s: %w", filename, ErrCircularInclude)
	}
	// Only the current include chain counts; the same file may appear in sibling branches
	p.stack[filename] = true
	defer delete(p.stack, filename)

	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	expanded, err := p.expand(string(content), filepath.Dir(filename))
	if err != nil {
		return "", fmt.Errorf("failed to process includes in %s: %w", filename, err)
	}
	return expanded, nil
}

func (p *Processor) expand(content, currentDir string) (string, error) {
	lines := strings.Split(content, "\n")
	var out strings.Builder

	for i, line := range lines {
		target, ok := includeTarget(line)
		if !ok {
			out.WriteString(line)
			if i < len(lines)-1 {
				out.WriteByte('\n')
			}
			continue
		}

		resolved, err := p.resolve(target, currentDir)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
		included, err := p.processFile(resolved)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
		out.WriteString(included)
		if !strings.HasSuffix(included, "\n") {
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}

func includeTarget(line string) (string, bool) {
	m := includeRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	for _, group := range m[1:] {
		if group != "" {
			return group, true
		}
	}
	return "", false
}

// resolve turns an include path into an absolute path under the base directory
func (p *Processor) resolve(includePath, currentDir string) (string, error) {
	if filepath.IsAbs(includePath) {
		return "", fmt.Errorf("absolute include path not allowed: %s", includePath)
	}
	absPath, err := filepath.Abs(filepath.Join(currentDir, filepath.Clean(includePath)))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseAbs, err := filepath.Abs(p.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute base path: %w", err)
	}

	rel, err := filepath.Rel(baseAbs, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("include path %s is outside the base directory %s", includePath, p.baseDir)
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", fmt.Errorf("included file does not exist: %s", includePath)
	}
	return absPath, nil
}
