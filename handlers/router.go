package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Routes are the handlers mounted by NewRouter.
type Routes struct {
	Pages          *PageHandler
	Tabs           *TabHandler
	Storage        *StorageMiddleware
	Health         http.HandlerFunc
	AllowedOrigins []string
}

// NewRouter builds the HTTP handler: page shells and the tab socket behind the
// storage cookie, and the health check outside it.
func NewRouter(rt Routes) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", rt.Health).Methods("GET")

	browser := r.NewRoute().Subrouter()
	browser.Use(rt.Storage.Storage)
	browser.HandleFunc("/", rt.Pages.Auth).Methods("GET")
	browser.HandleFunc("/index.html", rt.Pages.Auth).Methods("GET")
	browser.HandleFunc("/tasks.html", rt.Pages.Tasks).Methods("GET")

	// WebSocket route for the page runtime
	browser.HandleFunc("/api/ws", rt.Tabs.HandleWebSocket)

	origins := rt.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
