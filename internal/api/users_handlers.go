package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/registro/backend/internal/auth"
	"github.com/registro/backend/internal/repo"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// CreateUser cria um usuário da recepção. Rota restrita a ADMIN.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, `{"error":"email inválido"}`, http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, `{"error":"senha deve ter pelo menos 8 caracteres"}`, http.StatusBadRequest)
		return
	}
	if req.FullName == "" {
		http.Error(w, `{"error":"full_name obrigatório"}`, http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleStaff
	}
	if req.Role != auth.RoleStaff && req.Role != auth.RoleAdmin {
		http.Error(w, `{"error":"role inválida"}`, http.StatusBadRequest)
		return
	}
	hash, err := h.hashPassword(req.Password)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	id, err := repo.CreateUser(r.Context(), h.DB, req.Email, hash, req.FullName, req.Role)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, `{"error":"email já cadastrado"}`, http.StatusConflict)
			return
		}
		log.Printf("[api] criar usuário: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	log.Printf("[api] usuário %s (%s) criado por %s", id, req.Role, auth.UserIDFrom(r.Context()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
}
