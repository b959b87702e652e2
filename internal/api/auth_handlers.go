package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/registro/backend/internal/auth"
	"github.com/registro/backend/internal/repo"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

const tokenTTL = 24 * time.Hour

// Login autentica um usuário da recepção (STAFF ou ADMIN).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}
	u, err := repo.UserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		// Resposta genérica para e-mail inexistente e para erro interno.
		genericLoginError(w)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		genericLoginError(w)
		return
	}
	tok, err := auth.BuildJWT(h.Cfg.JWTSecret, u.ID.String(), u.Role, tokenTTL)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		Token:     tok,
		ExpiresAt: time.Now().Add(tokenTTL),
		User: UserInfo{
			ID:       u.ID.String(),
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
		},
	})
}

func genericLoginError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"invalid credentials"}`))
}

// MeResponse é o que dá para afirmar só com o token, sem ida ao banco.
type MeResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	c := auth.ClaimsFrom(r.Context())
	if c == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(MeResponse{
		UserID: c.UserID,
		Role:   c.Role,
	})
}
