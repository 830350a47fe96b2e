package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI Page routes (HTML templates)
	mux.HandleFunc("/", s.app.PageHandler.ServePage("index.html", "home"))

	// API routes - Flight search
	mux.HandleFunc("/api/search", s.app.SearchHandler.SearchFlightsHandler) // POST - availability search
	mux.HandleFunc("/api/pricing", s.app.SearchHandler.PricingHandler)      // POST - fare pricing

	// API routes - Bookings
	mux.HandleFunc("/api/bookings", s.handleBookingsRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/bookings/", s.handleBookingRoutes) // GET/DELETE /{id}, GET /{id}/ticket

	// API routes - Provider session
	mux.HandleFunc("/api/session", s.handleSessionRoute)                       // GET (status), DELETE (invalidate)
	mux.HandleFunc("/api/session/login", s.app.SessionHandler.LoginHandler)    // POST - force a fresh login
	mux.HandleFunc("/api/session/token", s.app.SessionHandler.SetTokenHandler) // POST - install an external token

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleBookingsRoute routes the booking collection endpoints
func (s *Server) handleBookingsRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r,
		s.app.BookingHandler.ListBookingsHandler,
		s.app.BookingHandler.CreateBookingHandler,
	)
}

// handleBookingRoutes routes booking-related requests to the appropriate handler
func (s *Server) handleBookingRoutes(w http.ResponseWriter, r *http.Request) {
	// GET /api/bookings/{id}/ticket
	if r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/ticket") {
		s.app.BookingHandler.TicketHandler(w, r)
		return
	}

	RouteResourceItem(w, r,
		s.app.BookingHandler.GetBookingHandler,
		s.app.BookingHandler.DeleteBookingHandler,
	)
}

// handleSessionRoute routes session status and invalidation requests
func (s *Server) handleSessionRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":    s.app.SessionHandler.StatusHandler,
		"DELETE": s.app.SessionHandler.InvalidateHandler,
	})
}
