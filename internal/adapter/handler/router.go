package handler

import "net/http"

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(h *HTTPHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)

	mux.HandleFunc("POST /api/sweets/categories", h.requireAuth(h.CreateCategory))
	mux.HandleFunc("GET /api/sweets/categories", h.requireAuth(h.ListCategories))

	mux.HandleFunc("POST /api/sweets", h.requireAuth(h.AddSweet))
	mux.HandleFunc("GET /api/sweets", h.requireAuth(h.ListSweets))
	mux.HandleFunc("GET /api/sweets/search", h.requireAuth(h.SearchSweets))
	mux.HandleFunc("PUT /api/sweets/{id}", h.requireAuth(h.UpdateSweet))
	mux.HandleFunc("DELETE /api/sweets/{id}", h.requireAdmin(h.DeleteSweet))
	mux.HandleFunc("POST /api/sweets/{id}/purchase", h.requireAuth(h.Purchase))
	mux.HandleFunc("POST /api/sweets/{id}/restock", h.requireAdmin(h.Restock))

	mux.HandleFunc("GET /healthz", h.HealthCheck)

	return WithRequestID(WithLogging(mux))
}
