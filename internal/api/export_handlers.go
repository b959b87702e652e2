package api

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/registro/backend/internal/brdoc"
	"github.com/registro/backend/internal/listquery"
	"github.com/registro/backend/internal/repo"
)

// Teto de páginas drenadas numa exportação, contra filtros abertos demais.
const exportMaxPages = 500

var exportHeader = []string{
	"id", "name", "cpf", "email", "phone", "birth_date",
	"convenio", "city", "state", "vip", "active", "updated_at",
}

func exportRow(p repo.Person) []string {
	vip := "no"
	if p.VIP {
		vip = "yes"
	}
	active := "yes"
	if !p.Active {
		active = "no"
	}
	return []string{
		p.ID.String(),
		p.Name,
		brdoc.MaskCPF(deref(p.CPF)),
		deref(p.Email),
		brdoc.FormatPhone(deref(p.MobilePhone)),
		deref(p.BirthDate),
		deref(p.Convenio),
		deref(p.City),
		deref(p.State),
		vip,
		active,
		p.UpdatedAt,
	}
}

// ExportPersonsCSV drena todas as páginas do filtro corrente e devolve um
// CSV. Usa o mesmo motor de listagem da UI, então o resultado é exatamente
// o que a listagem mostraria ao rolar até o fim.
func (h *Handler) ExportPersonsCSV(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng := listquery.NewEngine(listquery.DBFetcher{DB: h.DB})
		eng.SetFilter(filterFromQuery(r, kind))
		for page := 0; page < exportMaxPages; page++ {
			if err := eng.FetchNext(r.Context()); err != nil {
				log.Printf("[api] exportação %s página %d: %v", kind, page, err)
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
			if !eng.HasMore() {
				break
			}
		}

		filename := fmt.Sprintf("%ss-%s.csv", kind, time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		cw := csv.NewWriter(w)
		if err := cw.Write(exportHeader); err != nil {
			return
		}
		for _, p := range eng.Rows() {
			if err := cw.Write(exportRow(p)); err != nil {
				return
			}
		}
		cw.Flush()
	}
}
