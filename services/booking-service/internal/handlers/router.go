package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes holds everything the router mounts. PublicLimit, when set, wraps
// the unauthenticated booking endpoints.
type Routes struct {
	Public       *PublicHandler
	Appointments *AppointmentHandler
	PublicLimit  func(http.Handler) http.Handler
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/public", func(public chi.Router) {
			if rt.PublicLimit != nil {
				public.Use(rt.PublicLimit)
			}
			public.Get("/services", rt.Public.Services)
			public.Get("/slots", rt.Public.Slots)
			public.Post("/book", rt.Public.Book)
		})
		api.Get("/statuses", rt.Appointments.Statuses)
		api.Route("/appointments", func(appts chi.Router) {
			appts.Get("/", rt.Appointments.List)
			appts.Get("/stats", rt.Appointments.Stats)
			appts.Get("/{id}", rt.Appointments.Get)
			appts.Post("/{id}/confirm", rt.Appointments.Confirm)
			appts.Post("/{id}/reject", rt.Appointments.Reject)
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
