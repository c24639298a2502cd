package generation

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	PromptOutlineDOCX = "outline_docx"
	PromptOutlinePPTX = "outline_pptx"
	PromptSection     = "section"
	PromptRefine      = "refine"
)

var builtinPrompts = map[string]string{
	PromptOutlineDOCX: "Generate a structured outline for a business document about '{{.Topic}}'. " +
		"Return only a list of section headers, one per line.",
	PromptOutlinePPTX: "Generate a list of slide titles for a PowerPoint presentation about '{{.Topic}}'. " +
		"Return only a list of titles, one per line.",
	PromptSection: "Context: Project: {{.ProjectTitle}}.{{if .ProjectDescription}} {{.ProjectDescription}}.{{end}} Section: {{.SectionTitle}}\n\n" +
		"Task: Write content for section '{{.SectionTitle}}'{{if eq .DocumentType \"pptx\"}} as concise slide bullet points{{end}}.\n\n" +
		"Generate the content:",
	PromptRefine: "Context: Original content: {{.CurrentContent}}\n\n" +
		"Task: {{.Instruction}}\n\n" +
		"Rewrite the whole section '{{.SectionTitle}}' following the task. Return only the new content:",
}

// Prompts holds the parsed prompt templates, builtins unless overridden.
type Prompts struct {
	templates map[string]*template.Template
}

// DefaultPrompts parses the builtin templates.
func DefaultPrompts() *Prompts {
	p, err := parsePrompts(nil)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPrompts reads a YAML map of prompt name to template body. Names not in
// the file keep their builtin template; unknown names are rejected.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}
	return parsePrompts(overrides)
}

func parsePrompts(overrides map[string]string) (*Prompts, error) {
	for name := range overrides {
		if _, ok := builtinPrompts[name]; !ok {
			return nil, fmt.Errorf("unknown prompt %q", name)
		}
	}

	p := &Prompts{templates: make(map[string]*template.Template, len(builtinPrompts))}
	for name, body := range builtinPrompts {
		if o, ok := overrides[name]; ok && o != "" {
			body = o
		}
		tpl, err := template.New(name).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", name, err)
		}
		p.templates[name] = tpl
	}
	return p, nil
}

func (p *Prompts) Render(name string, data any) (string, error) {
	tpl, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
