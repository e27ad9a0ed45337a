package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shiroyama-web/kanri"
	"github.com/shiroyama-web/kanri/content"
)

// API bundles the engine, the content store, and a logger into the HTTP
// surface of the admin backend.
type API struct {
	engine   *kanri.Engine
	contents *content.Store
	log      zerolog.Logger
}

// New creates the API. contents may be nil in deployments that only serve
// authentication; content routes then answer 404.
func New(engine *kanri.Engine, contents *content.Store, log zerolog.Logger) *API {
	return &API{engine: engine, contents: contents, log: log}
}

// Router builds the route tree.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth", a.handleLogin)
	r.Delete("/api/auth", a.handleLogout)

	r.Get("/api/public/content/{kind}", a.handlePublicContent)

	r.Group(func(pr chi.Router) {
		pr.Use(a.RequireSession)
		pr.Get("/api/content/{kind}", a.handleGetContent)
		pr.Put("/api/content/{kind}", a.handlePutContent)
		pr.Post("/api/upload/{kind}", a.handleUpload)
		pr.Get("/api/images/{kind}", a.handleListImages)
		pr.Get("/api/image/{key}", a.handleGetImage)
		pr.Delete("/api/image/{key}", a.handleDeleteImage)
	})

	return r
}
