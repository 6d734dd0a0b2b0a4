package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/history-quiz/historyquiz/internal/store"
	"github.com/history-quiz/historyquiz/web"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	User      *store.User // nil for unauthenticated pages
	CSRFToken string      // empty on pages without forms
}

// pageCache maps a page file name (e.g. "quiz.html") to a compiled template
// set containing base.html + that one page file. Each page gets its own set
// so {{define "content"}} blocks don't collide.
var pageCache map[string]*template.Template

var templateFuncs = template.FuncMap{
	"addOne":  func(i int) int { return i + 1 },
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
}

func init() {
	pageCache = make(map[string]*template.Template)
	err := fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}
		t, err := template.New("").Funcs(templateFuncs).ParseFS(web.TemplateFS, "templates/base.html", p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[name] = t
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}
