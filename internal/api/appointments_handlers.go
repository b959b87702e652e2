package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/registro/backend/internal/repo"
	"gorm.io/gorm"
)

type CreateAppointmentRequest struct {
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Notes    *string    `json:"notes"`
}

// CreateAppointment agenda um atendimento para a pessoa. Todo atendimento
// nasce scheduled; mudanças de status vêm depois, via PATCH.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	personID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if req.StartsAt.IsZero() {
		http.Error(w, `{"error":"starts_at obrigatório"}`, http.StatusBadRequest)
		return
	}
	if req.EndsAt != nil && !req.EndsAt.After(req.StartsAt) {
		http.Error(w, `{"error":"ends_at deve ser depois de starts_at"}`, http.StatusBadRequest)
		return
	}
	p, err := repo.PersonByID(r.Context(), h.DB, personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	id, err := repo.CreateAppointment(r.Context(), h.DB, personID, req.StartsAt, req.EndsAt, req.Notes)
	if err != nil {
		log.Printf("[api] criar atendimento person=%s: %v", personID, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidatePersonCache(personID.String())

	// Confirmação por e-mail quando há destinatário; falha não desfaz nada.
	if h.sendAppointmentConfirmation != nil && p.Email != nil && *p.Email != "" {
		to, name := *p.Email, p.Name
		when := req.StartsAt.Format("02/01/2006 15:04")
		go func() {
			if err := h.sendAppointmentConfirmation(to, name, when); err != nil {
				log.Printf("[api] confirmação de atendimento %s: %v", id, err)
			}
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
}

// ListAppointments lista os atendimentos da pessoa, mais recentes primeiro.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	personID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	appts, err := repo.AppointmentsByPerson(r.Context(), h.DB, personID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]appointmentInfo, len(appts))
	for i := range appts {
		out[i] = *apptInfo(&appts[i])
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"appointments": out})
}

type PatchAppointmentRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Status   *string    `json:"status"`
	Notes    *string    `json:"notes"`
}

// PatchAppointment atualiza parcialmente um atendimento (remarcação, status,
// observações). Campos ausentes ficam como estão.
func (h *Handler) PatchAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["appointmentId"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	var req PatchAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if req.Status != nil && !repo.ValidAppointmentStatus(*req.Status) {
		writeValidationError(w, "", ErrInvalidStatus)
		return
	}
	cur, err := repo.AppointmentByID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := repo.UpdateAppointment(r.Context(), h.DB, id, req.StartsAt, req.EndsAt, req.Status, req.Notes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("[api] atualizar atendimento %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidatePersonCache(cur.PersonID.String())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Atendimento atualizado."})
}
