package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}}{{if .Down}} (rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

var migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// File is a created up/down migration pair
type File struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// Create writes the next sequential up/down pair into dir, e.g.
// 000003_add_listing_phone.up.sql
func Create(dir, name, description string) (*File, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	next := 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Number + 1
	}

	f := &File{
		Version:     fmt.Sprintf("%06d", next),
		Name:        base,
		Description: description,
	}
	prefix := filepath.Join(dir, f.Version+"_"+base)
	f.UpPath = prefix + ".up.sql"
	f.DownPath = prefix + ".down.sql"

	created := time.Now().UTC().Format(time.RFC3339)
	if err := writeFile(f.UpPath, f, created, false); err != nil {
		return nil, err
	}
	if err := writeFile(f.DownPath, f, created, true); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeFile(path string, f *File, created string, down bool) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	return fileTemplate.Execute(out, map[string]any{
		"Name":        f.Name,
		"Description": f.Description,
		"Created":     created,
		"Down":        down,
	})
}

// Entry is one migration version found on disk
type Entry struct {
	Number  int
	Name    string
	HasDown bool
}

// List returns the migrations in dir ordered by version. A missing dir is empty.
func List(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byNumber := map[int]*Entry{}
	for _, file := range files {
		m := migrationFile.FindStringSubmatch(file.Name())
		if file.IsDir() || m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		e, ok := byNumber[n]
		if !ok {
			e = &Entry{Number: n, Name: m[2]}
			byNumber[n] = e
		}
		if m[3] == "down" {
			e.HasDown = true
		}
	}

	entries := make([]Entry, 0, len(byNumber))
	for _, e := range byNumber {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	return entries, nil
}

// sanitizeName lowercases name and joins its alphanumeric words with underscores
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, w)
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}
	return strings.Join(cleaned, "_")
}
