// Package prompts holds the LLM prompt templates, embedded at compile time.
//
// Each JSON file maps prompt keys to template strings with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
)

//go:embed *.json
var files embed.FS

type set map[string]string

var loaded sync.Map // file name -> set

// Get returns the prompt stored under key in file (e.g. "matching.json").
func Get(file, key string) (string, error) {
	prompts, err := open(file)
	if err != nil {
		return "", err
	}
	if p, ok := prompts[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %q not found in %s", key, file)
}

// MustGet panics where Get would fail.
func MustGet(file, key string) string {
	p, err := Get(file, key)
	if err != nil {
		panic(err)
	}
	return p
}

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Format fills {{.Name}} placeholders from data in one pass. Placeholders with
// no value stay in place and inserted values are never expanded again.
func Format(template string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[placeholder.FindStringSubmatch(m)[1]]; ok {
			return v
		}
		return m
	})
}

func open(file string) (set, error) {
	if s, ok := loaded.Load(file); ok {
		return s.(set), nil
	}
	raw, err := files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	var s set
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", file, err)
	}
	actual, _ := loaded.LoadOrStore(file, s)
	return actual.(set), nil
}
