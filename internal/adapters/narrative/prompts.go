package narrative

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"text/template"
)

//go:embed prompts
var promptFS embed.FS

type prompts struct {
	analysis     *template.Template
	quickSummary *template.Template
	checklist    string
	template     string
	personas     map[string]string
}

type promptData struct {
	PropertyData string
	DistanceInfo string
	Checklist    string
	Template     string
}

func loadPrompts() (*prompts, error) {
	read := func(name string) (string, error) {
		b, err := promptFS.ReadFile(path.Join("prompts", name))
		if err != nil {
			return "", fmt.Errorf("load prompt %s: %w", name, err)
		}
		return string(b), nil
	}

	p := &prompts{personas: map[string]string{}}

	analysis, err := read("analysis_prompt.txt")
	if err != nil {
		return nil, err
	}
	if p.analysis, err = template.New("analysis").Parse(analysis); err != nil {
		return nil, fmt.Errorf("parse analysis prompt: %w", err)
	}

	quick, err := read("quick_summary_prompt.txt")
	if err != nil {
		return nil, err
	}
	if p.quickSummary, err = template.New("quick").Parse(quick); err != nil {
		return nil, fmt.Errorf("parse quick summary prompt: %w", err)
	}

	if p.checklist, err = read("inspection_checklist.txt"); err != nil {
		return nil, err
	}
	if p.template, err = read("analysis_template.json"); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(promptFS, "prompts/personas")
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		text, err := read(path.Join("personas", e.Name()))
		if err != nil {
			return nil, err
		}
		p.personas[strings.TrimSuffix(e.Name(), ".txt")] = strings.TrimSpace(text)
	}

	return p, nil
}

func (p *prompts) personaNames() []string {
	names := make([]string, 0, len(p.personas))
	for name := range p.personas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func render(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name(), err)
	}
	return b.String(), nil
}
