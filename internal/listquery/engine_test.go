package listquery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registro/backend/internal/repo"
)

// fakeFetcher serve páginas de um slice fixo, já ordenado por updated_at desc.
type fakeFetcher struct {
	mu    sync.Mutex
	rows  []repo.Person
	calls int
	block chan struct{} // quando não-nil, FetchPage espera o canal fechar
}

func (f *fakeFetcher) FetchPage(ctx context.Context, _ Filter, page int) ([]repo.Person, int, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	start := page * PageSize
	if start >= len(f.rows) {
		return nil, len(f.rows), nil
	}
	end := start + PageSize
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[start:end], len(f.rows), nil
}

func makePersons(n int) []repo.Person {
	out := make([]repo.Person, n)
	for i := range out {
		out[i] = repo.Person{
			ID:        uuid.New(),
			Kind:      repo.KindPatient,
			Name:      fmt.Sprintf("Pessoa %02d", i),
			UpdatedAt: time.Now().Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
		}
	}
	return out
}

func TestEngineAccumulatesDisjointPages(t *testing.T) {
	f := &fakeFetcher{rows: makePersons(45)}
	e := NewEngine(f)
	e.SetFilter(Filter{Kind: repo.KindPatient})

	require.NoError(t, e.FetchNext(context.Background()))
	require.Len(t, e.Rows(), 20)
	assert.True(t, e.HasMore())

	require.NoError(t, e.FetchNext(context.Background()))
	rows := e.Rows()
	require.Len(t, rows, 40)
	assert.True(t, e.HasMore())

	// Páginas concatenadas na ordem do servidor, sem repetição.
	seen := map[uuid.UUID]bool{}
	for _, p := range rows {
		require.False(t, seen[p.ID], "linha repetida entre páginas")
		seen[p.ID] = true
	}

	require.NoError(t, e.FetchNext(context.Background()))
	assert.Len(t, e.Rows(), 45)
	// hasMore vira false exatamente quando o acumulado alcança o total.
	assert.False(t, e.HasMore())
	assert.Equal(t, 45, e.Total())

	// Sem mais páginas, FetchNext vira no-op.
	calls := f.calls
	require.NoError(t, e.FetchNext(context.Background()))
	assert.Equal(t, calls, f.calls)
}

func TestEngineSetFilterResets(t *testing.T) {
	f := &fakeFetcher{rows: makePersons(30)}
	e := NewEngine(f)
	e.SetFilter(Filter{Kind: repo.KindPatient})
	require.NoError(t, e.FetchNext(context.Background()))
	require.Len(t, e.Rows(), 20)

	e.SetFilter(Filter{Kind: repo.KindPatient, Name: "Pessoa"})
	assert.Empty(t, e.Rows())
	assert.True(t, e.HasMore())
	require.NoError(t, e.FetchNext(context.Background()))
	assert.Len(t, e.Rows(), 20)
}

func TestEngineInFlightGuard(t *testing.T) {
	f := &fakeFetcher{rows: makePersons(5), block: make(chan struct{})}
	e := NewEngine(f)
	e.SetFilter(Filter{Kind: repo.KindClient})

	done := make(chan error, 1)
	go func() { done <- e.FetchNext(context.Background()) }()

	// Espera o primeiro fetch entrar no fetcher antes de tentar o segundo.
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.calls == 1
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, e.FetchNext(context.Background()), ErrFetchInFlight)

	close(f.block)
	require.NoError(t, <-done)
	assert.Len(t, e.Rows(), 5)
}

func TestEngineStaleResponseDiscarded(t *testing.T) {
	f := &fakeFetcher{rows: makePersons(5), block: make(chan struct{})}
	e := NewEngine(f)
	e.SetFilter(Filter{Kind: repo.KindClient})

	done := make(chan error, 1)
	go func() { done <- e.FetchNext(context.Background()) }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.calls == 1
	}, time.Second, 5*time.Millisecond)

	// Filtro muda com o fetch ainda pendente: a resposta atrasada pertence à
	// geração anterior e não pode sobrescrever a lista.
	e.SetFilter(Filter{Kind: repo.KindClient, Name: "Outro"})
	close(f.block)
	require.NoError(t, <-done)
	assert.Empty(t, e.Rows())
}

func TestApplyBirthMonth(t *testing.T) {
	jan := "1990-01-15"
	jun := "1985-06-02"
	rows := []repo.Person{
		{Name: "A", BirthDate: &jan},
		{Name: "B", BirthDate: &jun},
		{Name: "C"},
	}
	out := ApplyBirthMonth(rows, 6)
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].Name)

	// Mês zero desliga o filtro.
	assert.Len(t, ApplyBirthMonth(rows, 0), 3)
}

func TestHasMore(t *testing.T) {
	assert.True(t, HasMore(0, 21))
	assert.False(t, HasMore(0, 20))
	assert.False(t, HasMore(0, 5))
	assert.True(t, HasMore(1, 41))
	assert.False(t, HasMore(1, 40))
}
