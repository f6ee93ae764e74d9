package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robertcoopercode/better-photos/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	selectionHandler := handlers.NewSelectionHandler(deps.Session)
	tagsHandler := handlers.NewTagsHandler(deps.Session)
	albumsHandler := handlers.NewAlbumsHandler(deps.Session)
	peopleHandler := handlers.NewPeopleHandler(deps.Session, deps.Library)
	suggestHandler := handlers.NewSuggestHandler(deps.Session, deps.Provider, deps.Matcher)
	prefsHandler := handlers.NewPrefsHandler(deps.State)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Selection
		r.Get("/selection", selectionHandler.Get)
		r.Post("/selection/items", selectionHandler.SetItems)
		r.Post("/selection/select", selectionHandler.Select)
		r.Post("/selection/all", selectionHandler.SelectAll)
		r.Post("/selection/clear", selectionHandler.Clear)
		r.Post("/selection/navigate", selectionHandler.Navigate)

		// Tags
		r.Get("/tags", tagsHandler.List)
		r.Get("/tags/autocomplete", tagsHandler.Autocomplete)
		r.Post("/tags/load", tagsHandler.Load)
		r.Post("/tags/add", tagsHandler.Add)
		r.Post("/tags/remove", tagsHandler.Remove)
		r.Post("/tags/promote", tagsHandler.Promote)
		r.Post("/tags/rename", tagsHandler.Rename)
		r.Post("/tags/delete", tagsHandler.Delete)

		// Albums
		r.Get("/albums", albumsHandler.List)
		r.Post("/albums", albumsHandler.Create)
		r.Post("/albums/load", albumsHandler.Load)
		r.Post("/albums/add", albumsHandler.Add)
		r.Post("/albums/remove", albumsHandler.Remove)
		r.Post("/albums/filter", albumsHandler.Filter)
		r.Put("/albums/{uid}", albumsHandler.Rename)
		r.Delete("/albums/{uid}", albumsHandler.Delete)

		// People
		r.Get("/people", peopleHandler.List)
		r.Post("/people/load", peopleHandler.Load)
		r.Get("/people/no-faces", peopleHandler.NoFaces)

		// Suggestions
		r.Post("/suggest", suggestHandler.Suggest)

		// Preferences
		r.Get("/prefs", prefsHandler.Get)
		r.Put("/prefs", prefsHandler.Update)
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Better Photos</title></head>
<body>
    <h1>Better Photos</h1>
    <p>The desktop UI talks to this API. Health check at <a href="/api/v1/health">/api/v1/health</a>.</p>
</body>
</html>`))
	})
}
