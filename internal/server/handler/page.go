package handler

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/garrettladley/wext/internal/apperr"
	domain "github.com/garrettladley/wext/internal/panel"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/version"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/panel.html.tmpl"))

type Page struct {
	service panelsvc.Service
}

func NewPage(service panelsvc.Service) *Page {
	return &Page{service: service}
}

type pageToggle struct {
	Checkbox string
	Label    string
	Block    string
	Checked  bool
}

type pageData struct {
	Seq     uint64
	Render  domain.Render
	Toggles []pageToggle
	Version string
}

// Class is called from the template with an element id.
func (d pageData) Class(id string) string {
	return d.Render.Class(id)
}

// HandlePage handles GET /. The markup comes out already in the session's
// state, so a reload keeps the view and the expanded blocks.
func (h *Page) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	snap, err := h.service.Get(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load panel", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to load panel", err))
		return
	}

	data := pageData{
		Seq:     snap.Seq,
		Render:  snap.Render,
		Version: version.Get(),
	}
	for _, g := range domain.ToggleGroups {
		data.Toggles = append(data.Toggles, pageToggle{
			Checkbox: string(g.Checkbox),
			Label:    g.Label,
			Block:    g.Block(),
			Checked:  snap.State.BlockVisible(g.Checkbox),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logger.ErrorContext(ctx, "failed to render page", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to render page", err))
		return
	}

	xhttp.SetHeaderContentTypeTextHTML(w)
	w.Header().Set(xhttp.CacheControl, "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Assets serves the embedded script and stylesheet under /assets/.
func Assets() http.Handler {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/assets/", http.FileServerFS(sub))
}
