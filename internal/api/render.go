package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "chat", "community", "marketplace", "messages", "dating"}

var templateFuncs = template.FuncMap{
	"ts": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

type pageData struct {
	Title        string
	Active       string
	Session      *auth.Session
	AccessActive bool
	Flashes      map[string][]string
	Data         interface{}
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render drains pending flashes into the page and writes it.
func (h *APIHandler) render(w http.ResponseWriter, r *http.Request, page, title string, data interface{}) {
	tmpl, ok := h.templates[page]
	if !ok {
		http.Error(w, "Unknown page", http.StatusInternalServerError)
		return
	}

	pd := pageData{
		Title:        title,
		Active:       page,
		Session:      sessionFrom(r),
		AccessActive: h.marketplaceService.CanContact(h.accessCode(r)),
		Flashes:      map[string][]string{},
		Data:         data,
	}

	if sess, err := h.sessions.Get(r, sessionName); err == nil {
		for _, kind := range []string{flashSuccess, flashWarning, flashError} {
			for _, f := range sess.Flashes(kind) {
				if msg, ok := f.(string); ok {
					pd.Flashes[kind] = append(pd.Flashes[kind], msg)
				}
			}
		}
		if err := sess.Save(r, w); err != nil {
			log.WithError(err).Warn("Failed to save session after reading flashes")
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pd); err != nil {
		log.Printf("Error rendering page %s: %v", page, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
