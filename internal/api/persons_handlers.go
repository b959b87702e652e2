package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/registro/backend/internal/agenda"
	"github.com/registro/backend/internal/brdoc"
	"github.com/registro/backend/internal/listquery"
	"github.com/registro/backend/internal/repo"
	"github.com/registro/backend/internal/wizard"
	"gorm.io/gorm"
)

type appointmentInfo struct {
	ID       string     `json:"id"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Status   string     `json:"status"`
	Notes    *string    `json:"notes,omitempty"`
}

// personResponse é a projeção de pessoa na API: campos crus + versões de
// exibição (CPF mascarado, telefone formatado) + resumo de agenda.
type personResponse struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Name          string  `json:"name"`
	SocialName    *string `json:"social_name,omitempty"`
	CPF           *string `json:"cpf,omitempty"`
	CPFMasked     string  `json:"cpf_masked,omitempty"`
	RG            *string `json:"rg,omitempty"`
	DocumentType  *string `json:"document_type,omitempty"`
	Email         *string `json:"email,omitempty"`
	MobilePhone   *string `json:"mobile_phone,omitempty"`
	PhoneDisplay  string  `json:"phone_display"`
	Phone1        *string `json:"phone1,omitempty"`
	Phone2        *string `json:"phone2,omitempty"`
	BirthDate     *string `json:"birth_date,omitempty"`
	Sex           string  `json:"sex"`
	MaritalStatus string  `json:"marital_status"`
	Profession    *string `json:"profession,omitempty"`
	Convenio      *string `json:"convenio,omitempty"`
	CEP           *string `json:"cep,omitempty"`
	Street        *string `json:"street,omitempty"`
	AddressNumber *string `json:"address_number,omitempty"`
	Complement    *string `json:"complement,omitempty"`
	Neighborhood  *string `json:"neighborhood,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	MotherName    *string `json:"mother_name,omitempty"`
	FatherName    *string `json:"father_name,omitempty"`
	Observations  *string `json:"observations,omitempty"`
	VIP           bool    `json:"vip"`
	Active        bool    `json:"active"`
	HasPhoto      bool    `json:"has_photo"`
	UpdatedAt     string  `json:"updated_at"`

	LastAppointment *appointmentInfo `json:"last_appointment,omitempty"`
	NextAppointment *appointmentInfo `json:"next_appointment,omitempty"`
}

func apptInfo(a *repo.Appointment) *appointmentInfo {
	if a == nil {
		return nil
	}
	return &appointmentInfo{
		ID:       a.ID.String(),
		StartsAt: a.StartsAt,
		EndsAt:   a.EndsAt,
		Status:   a.Status,
		Notes:    a.Notes,
	}
}

func toPersonResponse(p repo.Person, s agenda.Summary) personResponse {
	return personResponse{
		ID:            p.ID.String(),
		Kind:          p.Kind,
		Name:          p.Name,
		SocialName:    p.SocialName,
		CPF:           p.CPF,
		CPFMasked:     brdoc.MaskCPF(deref(p.CPF)),
		RG:            p.RG,
		DocumentType:  p.DocumentType,
		Email:         p.Email,
		MobilePhone:   p.MobilePhone,
		PhoneDisplay:  brdoc.DisplayPhone(deref(p.MobilePhone)),
		Phone1:        p.Phone1,
		Phone2:        p.Phone2,
		BirthDate:     p.BirthDate,
		Sex:           p.Sex,
		MaritalStatus: p.MaritalStatus,
		Profession:    p.Profession,
		Convenio:      p.Convenio,
		CEP:           p.CEP,
		Street:        p.Street,
		AddressNumber: p.AddressNumber,
		Complement:    p.Complement,
		Neighborhood:  p.Neighborhood,
		City:          p.City,
		State:         p.State,
		MotherName:    p.MotherName,
		FatherName:    p.FatherName,
		Observations:  p.Observations,
		VIP:           p.VIP,
		Active:        p.Active,
		HasPhoto:      p.PhotoPath != nil && *p.PhotoPath != "",
		UpdatedAt:     p.UpdatedAt,

		LastAppointment: apptInfo(s.Last),
		NextAppointment: apptInfo(s.Next),
	}
}

// filterFromQuery monta o filtro composto a partir da query string. Campos
// ausentes não filtram (AND só sobre o que veio).
func filterFromQuery(r *http.Request, kind string) listquery.Filter {
	q := r.URL.Query()
	f := listquery.Filter{
		Kind:     kind,
		Name:     q.Get("name"),
		Convenio: q.Get("convenio"),
		VIPOnly:  q.Get("vip") == "true",
		City:     q.Get("city"),
		State:    q.Get("state"),
	}
	if s := q.Get("birth_month"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
			f.BirthMonth = n
		}
	}
	return f
}

// agendaFor agrega last/next por pessoa para a página corrente, com um único
// "now" para a página inteira.
func (h *Handler) agendaFor(r *http.Request, rows []repo.Person) map[uuid.UUID]agenda.Summary {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	appts, err := repo.AppointmentsByPersonIDs(r.Context(), h.DB, ids)
	if err != nil {
		log.Printf("[api] agenda da listagem: %v", err)
		return nil
	}
	return agenda.Aggregate(appts, time.Now())
}

// ListPersons devolve uma página da listagem do subtipo, já enriquecida com
// o resumo de agenda e com o pós-filtro de mês de aniversário aplicado.
func (h *Handler) ListPersons(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := ParsePage(r)
		f := filterFromQuery(r, kind)
		fetcher := listquery.DBFetcher{DB: h.DB}
		rows, total, err := fetcher.FetchPage(r.Context(), f, page)
		if err != nil {
			log.Printf("[api] listagem %s: %v", kind, err)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		hasMore := listquery.HasMore(page, total)
		if f.BirthMonth != 0 {
			rows = listquery.ApplyBirthMonth(rows, f.BirthMonth)
		}
		summaries := h.agendaFor(r, rows)
		out := make([]personResponse, len(rows))
		for i := range rows {
			out[i] = toPersonResponse(rows[i], summaries[rows[i].ID])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"persons":  out,
			"page":     page,
			"total":    total,
			"has_more": hasMore,
		})
	}
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	cacheKey := "person:" + id.String()
	if h.Cache != nil {
		if b := h.Cache.Get(cacheKey); b != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(b)
			return
		}
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
	appts, err := repo.AppointmentsByPerson(r.Context(), h.DB, id)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	resp := toPersonResponse(*p, agenda.Aggregate(appts, time.Now())[id])
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if h.Cache != nil {
		h.Cache.Set(cacheKey, body)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// decodeAndValidatePerson aplica as validações de criação/edição: enums do
// request e o wizard completo (nome, cpf, email, cep, nascimento). Erros de
// validação saem com 400 e a etapa que falhou.
func decodeAndValidatePerson(w http.ResponseWriter, r *http.Request) (*PersonRequest, bool) {
	var req PersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return nil, false
	}
	if err := req.ValidateEnums(); err != nil {
		writeValidationError(w, "", err)
		return nil, false
	}
	if stepID, err := wizard.ValidateAll(req.wizardInput()); err != nil {
		writeValidationError(w, stepID, err)
		return nil, false
	}
	return &req, true
}

func writeValidationError(w http.ResponseWriter, stepID string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	body := map[string]string{"error": err.Error()}
	if stepID != "" {
		body["step"] = stepID
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) CreatePerson(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAndValidatePerson(w, r)
		if !ok {
			return
		}
		id, err := repo.CreatePerson(r.Context(), h.DB, req.ToPerson(kind))
		if err != nil {
			if isUniqueViolation(err) {
				http.Error(w, `{"error":"cpf já cadastrado"}`, http.StatusConflict)
				return
			}
			log.Printf("[api] criar %s: %v", kind, err)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
	}
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	req, ok := decodeAndValidatePerson(w, r)
	if !ok {
		return
	}
	cur, err := repo.PersonByID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := repo.UpdatePerson(r.Context(), h.DB, id, req.ToPerson(cur.Kind)); err != nil {
		if isUniqueViolation(err) {
			http.Error(w, `{"error":"cpf já cadastrado"}`, http.StatusConflict)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("[api] atualizar pessoa %s: %v", id, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidatePersonCache(id.String())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Cadastro atualizado."})
}

// DeletePerson aplica a política de remoção por subtipo: client sempre
// arquiva; patient arquiva quando tem atendimento e só remove de vez quando
// nunca teve nenhum. A limpeza de fotos do hard delete é best-effort.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
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

	archive := p.Kind == repo.KindClient
	if !archive {
		n, err := repo.AppointmentsCountByPerson(r.Context(), h.DB, id)
		if err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		archive = n > 0
	}

	if archive {
		if err := repo.ArchivePerson(r.Context(), h.DB, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Já estava arquivada.
				http.Error(w, `{"error":"already archived"}`, http.StatusConflict)
				return
			}
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		h.invalidatePersonCache(id.String())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Cadastro arquivado.", "outcome": "archived"})
		return
	}

	// Fotos primeiro; falha aqui não bloqueia a remoção do registro.
	if h.Store != nil {
		if err := h.Store.RemoveAll(id.String()); err != nil {
			log.Printf("[api] limpeza de fotos %s: %v", id, err)
		}
	}
	if err := repo.HardDeletePerson(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidatePersonCache(id.String())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Cadastro removido.", "outcome": "deleted"})
}
