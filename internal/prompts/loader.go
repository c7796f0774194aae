// Package prompts holds the LLM prompt templates used to rank portfolio links
// and write cover letters. Templates live in cover_letter.json, embedded at
// compile time, and use {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// File is the embedded prompt catalogue.
const File = "cover_letter.json"

// Key names a template in the catalogue.
type Key string

// Templates in the catalogue.
const (
	SelectLinksSystem        Key = "select-links-system"
	SelectLinksUser          Key = "select-links-user"
	LetterSystemProfessional Key = "letter-system-professional"
	LetterSystemConfident    Key = "letter-system-confident"
	LetterUser               Key = "letter-user"
)

// Keys lists every template the service depends on.
var Keys = []Key{
	SelectLinksSystem,
	SelectLinksUser,
	LetterSystemProfessional,
	LetterSystemConfident,
	LetterUser,
}

//go:embed *.json
var promptFiles embed.FS

var (
	loadOnce sync.Once
	loaded   map[Key]string
	loadErr  error
)

func catalogue() (map[Key]string, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(File)
	})
	return loaded, loadErr
}

func parse(filename string) (map[Key]string, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	templates := make(map[Key]string, len(raw))
	for k, v := range raw {
		templates[Key(k)] = v
	}
	return templates, nil
}

// Get returns the template stored under key.
func Get(key Key) (string, error) {
	templates, err := catalogue()
	if err != nil {
		return "", err
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, File)
	}
	return template, nil
}

// MustGet is Get for templates the binary cannot run without.
func MustGet(key Key) string {
	template, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format substitutes {{.Name}} placeholders with values from data in a single
// pass, so placeholder-like text inside a value is left untouched. Unknown
// placeholders remain as they are.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for name, value := range data {
		pairs = append(pairs, "{{."+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Render formats the template stored under key.
func Render(key Key, data map[string]string) string {
	return Format(MustGet(key), data)
}

// List returns the catalogue's keys in sorted order.
func List() ([]Key, error) {
	templates, err := catalogue()
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}
