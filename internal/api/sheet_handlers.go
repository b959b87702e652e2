package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/registro/backend/internal/pdf"
	"github.com/registro/backend/internal/repo"
	"gorm.io/gorm"
)

// PersonSheetPDF devolve a ficha cadastral em PDF, com QR apontando para o
// registro na API.
func (h *Handler) PersonSheetPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	p, err := repo.PersonByID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	verURL := ""
	if h.Cfg != nil && h.Cfg.BackendPublicURL != "" {
		verURL = fmt.Sprintf("%s/api/%ss/%s", h.Cfg.BackendPublicURL, p.Kind, p.ID.String())
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.SheetFilename(*p)+`"`)
	if err := pdf.WriteSheetTo(*p, verURL, w); err != nil {
		// Falha de montagem acontece antes de qualquer byte ser escrito.
		log.Printf("[api] ficha PDF %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}

// EmailPersonSheet envia a ficha cadastral em PDF para o e-mail da pessoa.
func (h *Handler) EmailPersonSheet(w http.ResponseWriter, r *http.Request) {
	if h.Mail == nil {
		http.Error(w, `{"error":"smtp não configurado"}`, http.StatusServiceUnavailable)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	p, err := repo.PersonByID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if p.Email == nil || *p.Email == "" {
		http.Error(w, `{"error":"pessoa sem e-mail"}`, http.StatusBadRequest)
		return
	}
	verURL := ""
	if h.Cfg != nil && h.Cfg.BackendPublicURL != "" {
		verURL = fmt.Sprintf("%s/api/%ss/%s", h.Cfg.BackendPublicURL, p.Kind, p.ID.String())
	}
	sheet, err := pdf.BuildPersonSheetPDF(*p, verURL)
	if err != nil {
		log.Printf("[api] ficha PDF %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	body := fmt.Sprintf("Olá, %s,\r\n\r\nSegue em anexo a sua ficha cadastral.", p.Name)
	if err := h.Mail.SendWithAttachment(*p.Email, "Ficha cadastral - Registro", body, pdf.SheetFilename(*p), sheet); err != nil {
		log.Printf("[api] enviar ficha %s: %v", id, err)
		http.Error(w, `{"error":"falha ao enviar e-mail"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"sent": true})
}
