package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/core/service"
	"github.com/rl1809/sweet-shop/internal/obs"
	"github.com/rl1809/sweet-shop/internal/port"
)

const expiryLayout = "2006-01-02"

type HTTPHandler struct {
	auth       *service.AuthService
	categories *service.CategoryService
	sweets     *service.SweetService
	tokens     port.TokenService
}

func NewHTTPHandler(auth *service.AuthService, categories *service.CategoryService, sweets *service.SweetService, tokens port.TokenService) *HTTPHandler {
	return &HTTPHandler{
		auth:       auth,
		categories: categories,
		sweets:     sweets,
		tokens:     tokens,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type sweetRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Expiry   string  `json:"expiry"`
}

type sweetUpdateRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
	Expiry   *string  `json:"expiry"`
}

type stockRequest struct {
	Quantity  int    `json:"quantity"`
	RequestID string `json:"request_id"`
}

type sweetResponse struct {
	ID       string           `json:"_id"`
	Name     string           `json:"name"`
	Category categoryResponse `json:"category"`
	Price    float64          `json:"price"`
	Quantity int              `json:"quantity"`
	Expiry   *string          `json:"expiry"`
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

func toSweetResponse(s domain.Sweet) sweetResponse {
	resp := sweetResponse{
		ID:       s.ID,
		Name:     s.Name,
		Category: toCategoryResponse(s.Category),
		Price:    s.Price,
		Quantity: s.Quantity,
	}
	if s.ExpiresAt != nil {
		expiry := s.ExpiresAt.Format(expiryLayout)
		resp.Expiry = &expiry
	}
	return resp
}

func toSweetResponses(sweets []domain.Sweet) []sweetResponse {
	out := make([]sweetResponse, 0, len(sweets))
	for _, s := range sweets {
		out = append(out, toSweetResponse(s))
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeError maps the error taxonomy onto status codes and envelope
// messages. Anything unclassified is a 500 and gets logged with its cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeFail(w, http.StatusBadRequest, ve.Msg)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserExists):
		writeFail(w, http.StatusBadRequest, "User already registered")
	case errors.Is(err, domain.ErrUserNotFound):
		writeFail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrBadCredentials):
		writeFail(w, http.StatusUnauthorized, "Incorrect password")
	case errors.Is(err, domain.ErrCategoryExists):
		writeFail(w, http.StatusBadRequest, "Category already exists.")
	case errors.Is(err, domain.ErrCategoryNotFound):
		writeFail(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, domain.ErrSweetNotFound):
		writeFail(w, http.StatusNotFound, "Sweet not found")
	case errors.Is(err, domain.ErrInsufficientStock):
		writeFail(w, http.StatusConflict, "Insufficient stock")
	case errors.Is(err, domain.ErrDuplicateRequest):
		writeFail(w, http.StatusConflict, "Duplicate request")
	default:
		obs.Logger.Error("request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err.Error(),
		)
		writeFail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.IsAdmin); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccessMessage(w, http.StatusCreated, "User successfully registered")
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, role, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, tokenResponse{Token: token, Role: string(role)})
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toCategoryResponse(*category))
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *HTTPHandler) AddSweet(w http.ResponseWriter, r *http.Request) {
	var req sweetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expiresAt, ok := parseExpiry(w, req.Expiry)
	if !ok {
		return
	}

	sweet, err := h.sweets.Add(r.Context(), req.Name, req.Category, req.Price, req.Quantity, expiresAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toSweetResponse(*sweet))
}

func (h *HTTPHandler) ListSweets(w http.ResponseWriter, r *http.Request) {
	sweets, err := h.sweets.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSweetResponses(sweets))
}

func (h *HTTPHandler) SearchSweets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.SearchFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
	}

	var ok bool
	if filter.MinPrice, ok = parseFloatParam(w, q.Get("min_price"), "min_price"); !ok {
		return
	}
	if filter.MaxPrice, ok = parseFloatParam(w, q.Get("max_price"), "max_price"); !ok {
		return
	}
	if filter.MinQuantity, ok = parseIntParam(w, q.Get("min_quantity"), "min_quantity"); !ok {
		return
	}

	sweets, err := h.sweets.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSweetResponses(sweets))
}

func (h *HTTPHandler) UpdateSweet(w http.ResponseWriter, r *http.Request) {
	var req sweetUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := port.SweetUpdate{
		Name:       req.Name,
		CategoryID: req.Category,
		Price:      req.Price,
		Quantity:   req.Quantity,
	}
	if req.Expiry != nil {
		expiresAt, ok := parseExpiry(w, *req.Expiry)
		if !ok {
			return
		}
		upd.ExpiresAt = expiresAt
	}

	sweet, err := h.sweets.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSweetResponse(*sweet))
}

func (h *HTTPHandler) DeleteSweet(w http.ResponseWriter, r *http.Request) {
	if err := h.sweets.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccessMessage(w, http.StatusOK, "Sweet successfully deleted")
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sweet, err := h.sweets.Purchase(r.Context(), req.RequestID, r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSweetResponse(*sweet))
}

func (h *HTTPHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sweet, err := h.sweets.Restock(r.Context(), req.RequestID, r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSweetResponse(*sweet))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseExpiry(w http.ResponseWriter, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(expiryLayout, value)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "expiry must be a YYYY-MM-DD date")
		return nil, false
	}
	return &t, true
}

func parseFloatParam(w http.ResponseWriter, value, name string) (*float64, bool) {
	if value == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, name+" must be a number")
		return nil, false
	}
	return &f, true
}

func parseIntParam(w http.ResponseWriter, value, name string) (*int, bool) {
	if value == "" {
		return nil, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		writeFail(w, http.StatusBadRequest, name+" must be an integer")
		return nil, false
	}
	return &n, true
}
