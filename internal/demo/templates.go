package demo

import (
	"embed"
	"html/template"
	"io"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateProvider parses templates once from an embedded FS.
type TemplateProvider struct {
	fs embed.FS

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewTemplateProvider returns a provider reading from fs.
func NewTemplateProvider(fs embed.FS) *TemplateProvider {
	return &TemplateProvider{fs: fs, cache: make(map[string]*template.Template)}
}

// Get parses and caches templates/<name>.
func (p *TemplateProvider) Get(name string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.cache[name]; ok {
		return t, nil
	}
	t, err := template.ParseFS(p.fs, "templates/"+name)
	if err != nil {
		return nil, err
	}
	p.cache[name] = t
	return t, nil
}

// Execute renders templates/<name> with data.
func (p *TemplateProvider) Execute(w io.Writer, name string, data interface{}) error {
	t, err := p.Get(name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}
