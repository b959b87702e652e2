// Package listquery monta a listagem paginada de pessoas: filtros compostos
// (AND) empurrados para o banco, pós-filtro de mês de aniversário em memória
// e acumulação de páginas com sinal de "tem mais".
package listquery

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/registro/backend/internal/repo"
)

// PageSize é fixo: a UI sempre pede páginas de 20.
const PageSize = 20

// ErrFetchInFlight: um fetch novo é recusado enquanto outro está pendente.
// O pendente não é cancelado.
var ErrFetchInFlight = errors.New("fetch already in flight")

// Filter é o conjunto ativo de filtros. BirthMonth (1–12, 0 desliga) é o
// único aplicado depois da página vir do banco: o backend não expõe
// predicado de mês, e a contagem exata continua sendo a da query sem ele —
// com filtro de mês ativo o "tem mais" pode ficar impreciso (limitação
// documentada, não silenciosamente corrigida).
type Filter struct {
	Kind       string
	Name       string
	Convenio   string
	VIPOnly    bool
	City       string
	State      string
	BirthMonth int
}

func (f Filter) repoFilter() repo.PersonFilter {
	return repo.PersonFilter{
		Name:     f.Name,
		Convenio: f.Convenio,
		VIPOnly:  f.VIPOnly,
		City:     f.City,
		State:    f.State,
	}
}

// Fetcher busca uma página e a contagem exata pré-pós-filtro.
type Fetcher interface {
	FetchPage(ctx context.Context, f Filter, page int) ([]repo.Person, int, error)
}

// DBFetcher é o Fetcher de produção, por cima do repo.
type DBFetcher struct {
	DB *gorm.DB
}

func (d DBFetcher) FetchPage(ctx context.Context, f Filter, page int) ([]repo.Person, int, error) {
	rf := f.repoFilter()
	total, err := repo.PersonsFilteredCount(ctx, d.DB, f.Kind, rf)
	if err != nil {
		return nil, 0, err
	}
	rows, err := repo.PersonsFiltered(ctx, d.DB, f.Kind, rf, PageSize, page*PageSize)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ApplyBirthMonth filtra em memória pelo mês do aniversário em horário
// local. Pessoas sem data de nascimento nunca passam.
func ApplyBirthMonth(rows []repo.Person, month int) []repo.Person {
	if month < 1 || month > 12 {
		return rows
	}
	out := rows[:0:0]
	for _, p := range rows {
		if p.BirthDate == nil {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", *p.BirthDate, time.Local)
		if err != nil {
			continue
		}
		if int(t.Month()) == month {
			out = append(out, p)
		}
	}
	return out
}

// HasMore: ainda há páginas quando o que já foi pedido não cobre o total.
func HasMore(page, total int) bool {
	return (page+1)*PageSize < total
}

// Engine acumula páginas de uma listagem. Trocar o filtro zera a acumulação.
// Cada fetch carrega um número de geração monotônico amarrado ao filtro
// corrente; respostas de gerações antigas são descartadas em vez de
// sobrescrever a lista (corrige a corrida de resposta atrasada).
type Engine struct {
	fetcher Fetcher

	mu          sync.Mutex
	filter      Filter
	generation  uint64
	rows        []repo.Person
	page        int
	total       int
	hasMore     bool
	fetchedOnce bool
	inFlight    bool
}

func NewEngine(fetcher Fetcher) *Engine {
	return &Engine{fetcher: fetcher, hasMore: true}
}

// SetFilter troca o filtro ativo: descarta linhas acumuladas, volta para a
// página 0 e invalida fetches pendentes (bump de geração).
func (e *Engine) SetFilter(f Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = f
	e.generation++
	e.rows = nil
	e.page = 0
	e.total = 0
	e.hasMore = true
	e.fetchedOnce = false
}

// Rows devolve as linhas acumuladas até aqui (pós-filtro de mês incluído).
func (e *Engine) Rows() []repo.Person {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]repo.Person, len(e.rows))
	copy(out, e.rows)
	return out
}

func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasMore
}

// Total é a contagem exata reportada pelo banco para o filtro (sem o
// pós-filtro de mês).
func (e *Engine) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// FetchNext busca a próxima página e acrescenta ao acumulado. Retorna
// ErrFetchInFlight se já houver busca pendente; é no-op quando não há mais
// páginas.
func (e *Engine) FetchNext(ctx context.Context) error {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return ErrFetchInFlight
	}
	if e.fetchedOnce && !e.hasMore {
		e.mu.Unlock()
		return nil
	}
	gen := e.generation
	page := 0
	if e.fetchedOnce {
		page = e.page + 1
	}
	f := e.filter
	e.inFlight = true
	e.mu.Unlock()

	rows, total, err := e.fetcher.FetchPage(ctx, f, page)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if gen != e.generation {
		// Resposta de um filtro antigo: descartar, não sobrescrever.
		return nil
	}
	if err != nil {
		return err
	}
	rows = ApplyBirthMonth(rows, f.BirthMonth)
	e.rows = append(e.rows, rows...)
	e.page = page
	e.total = total
	e.hasMore = HasMore(page, total)
	e.fetchedOnce = true
	return nil
}
