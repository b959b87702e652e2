// Package agenda deriva, por pessoa, o último atendimento realizado e o
// próximo atendimento agendado a partir do conjunto bruto de atendimentos.
package agenda

import (
	"time"

	"github.com/google/uuid"
	"github.com/registro/backend/internal/repo"
)

// Summary é o par exibido nas colunas "último" e "próximo" da listagem.
type Summary struct {
	Last *repo.Appointment
	Next *repo.Appointment
}

// Aggregate faz uma passada única sobre os atendimentos. "Último" é o start
// mais recente com starts_at <= now, qualquer status; "próximo" é o start
// mais próximo com starts_at > now e status scheduled. O now é avaliado uma
// vez pelo caller para manter a fronteira consistente no lote inteiro.
// Empates de timestamp ficam com o registro visto primeiro — ordem de
// iteração, não é garantia para quem consome.
func Aggregate(appts []repo.Appointment, now time.Time) map[uuid.UUID]Summary {
	out := make(map[uuid.UUID]Summary)
	for i := range appts {
		a := &appts[i]
		s := out[a.PersonID]
		if !a.StartsAt.After(now) {
			if s.Last == nil || s.Last.StartsAt.Before(a.StartsAt) {
				s.Last = a
			}
		} else if a.Status == repo.StatusScheduled {
			if s.Next == nil || s.Next.StartsAt.After(a.StartsAt) {
				s.Next = a
			}
		}
		out[a.PersonID] = s
	}
	return out
}
