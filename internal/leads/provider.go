package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

var (
	// ErrInvalidDocument is returned when a file holds neither a lead object
	// nor an array of leads.
	ErrInvalidDocument = errors.New("document is not a lead object or array")
	// ErrNoLeads is returned when a source yields no lead at all.
	ErrNoLeads = errors.New("no leads found")
)

// DefaultConsolidatedName is the file produced by Consolidate, skipped when
// the directory is read again.
const DefaultConsolidatedName = "leads.json"

// Provider loads the lead directory.
type Provider interface {
	Load(ctx context.Context) ([]Lead, error)
}

// FileProvider loads leads from a JSON file or from a directory of JSON files.
type FileProvider struct {
	Path   string
	Logger *observability.Logger
}

// NewFileProvider creates a provider for path.
func NewFileProvider(path string, logger *observability.Logger) *FileProvider {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &FileProvider{Path: path, Logger: logger}
}

// Load reads the file, or consolidates the directory in memory.
func (p *FileProvider) Load(ctx context.Context) ([]Lead, error) {
	info, err := os.Stat(p.Path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(p.Path)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		out, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p.Path), err)
		}
		p.Logger.Info().Str("path", p.Path).Int("leads", len(out)).Msg("Dataset loaded")
		return out, nil
	}

	docs, outcomes, err := collectDir(ctx, p.Path, DefaultConsolidatedName, nil)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			p.Logger.Warn().Str("file", o.Name).Err(o.Err).Msg("Skipping unreadable lead file")
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", p.Path, ErrNoLeads)
	}

	out := make([]Lead, 0, len(docs))
	for _, doc := range docs {
		var lead Lead
		if err := json.Unmarshal(doc, &lead); err != nil {
			continue
		}
		out = append(out, lead)
	}
	p.Logger.Info().Str("dir", p.Path).Int("files", len(outcomes)).Int("leads", len(out)).Msg("Dataset consolidated")
	return out, nil
}

// FileOutcome reports what happened to one file during consolidation.
type FileOutcome struct {
	Name  string
	Leads int
	Err   error
}

// Consolidation summarizes a Consolidate run.
type Consolidation struct {
	Output string
	Leads  int
	Files  []FileOutcome
}

// FilesRead counts the files that were merged successfully.
func (c *Consolidation) FilesRead() int {
	n := 0
	for _, f := range c.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// ListSourceFiles returns the JSON files Consolidate would read, in name order.
func ListSourceFiles(dir, skip string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list lead files: %w", err)
	}
	out := matches[:0]
	for _, m := range matches {
		if filepath.Base(m) == skip {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// Consolidate merges every *.json file in dir into one array written to
// dir/outName. Arrays are appended as-is; single objects are tagged with
// their file name in "_source". progress, when set, is called per file.
func Consolidate(ctx context.Context, dir, outName string, progress func(FileOutcome)) (*Consolidation, error) {
	if outName == "" {
		outName = DefaultConsolidatedName
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}

	docs, outcomes, err := collectDir(ctx, dir, outName, progress)
	if err != nil {
		return nil, err
	}

	result := &Consolidation{
		Output: filepath.Join(dir, outName),
		Leads:  len(docs),
		Files:  outcomes,
	}
	if len(docs) == 0 {
		return result, ErrNoLeads
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return nil, fmt.Errorf("encode consolidated leads: %w", err)
	}

	if err := os.WriteFile(result.Output, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write consolidated leads: %w", err)
	}
	return result, nil
}

func collectDir(ctx context.Context, dir, skip string, progress func(FileOutcome)) ([]json.RawMessage, []FileOutcome, error) {
	files, err := ListSourceFiles(dir, skip)
	if err != nil {
		return nil, nil, err
	}

	var docs []json.RawMessage
	outcomes := make([]FileOutcome, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		name := filepath.Base(path)
		found, err := readDocument(path, name)
		outcome := FileOutcome{Name: name, Leads: len(found), Err: err}
		if err == nil {
			docs = append(docs, found...)
		}
		outcomes = append(outcomes, outcome)
		if progress != nil {
			progress(outcome)
		}
	}
	return docs, outcomes, nil
}

func readDocument(path, name string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(bytes.TrimSpace(data))

	switch {
	case isArray(raw):
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	case isObject(raw):
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		source, _ := json.Marshal(name)
		fields["_source"] = source
		tagged, err := marshalRaw(fields)
		if err != nil {
			return nil, err
		}
		return []json.RawMessage{tagged}, nil
	default:
		return nil, ErrInvalidDocument
	}
}


// marshalRaw encodes v without HTML escaping so names like "A & B" are
// written back unchanged.
func marshalRaw(v interface{}) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
