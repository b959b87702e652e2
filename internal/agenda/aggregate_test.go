package agenda

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registro/backend/internal/repo"
)

func appt(person uuid.UUID, startsAt time.Time, status string) repo.Appointment {
	return repo.Appointment{ID: uuid.New(), PersonID: person, StartsAt: startsAt, Status: status}
}

func TestAggregateLastAndNext(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	person := uuid.New()
	appts := []repo.Appointment{
		appt(person, now.Add(-10*time.Hour), repo.StatusCompleted),
		appt(person, now.Add(-5*time.Hour), repo.StatusCanceled),
		appt(person, now.Add(5*time.Hour), repo.StatusScheduled),
		appt(person, now.Add(10*time.Hour), repo.StatusScheduled),
	}
	out := Aggregate(appts, now)
	s := out[person]
	require.NotNil(t, s.Last)
	require.NotNil(t, s.Next)
	// "Último" é o mais recente no passado, qualquer status (inclusive cancelado).
	assert.Equal(t, now.Add(-5*time.Hour), s.Last.StartsAt)
	// "Próximo" é o agendado mais perto; t+10 não vence por não ser o mais próximo.
	assert.Equal(t, now.Add(5*time.Hour), s.Next.StartsAt)
}

func TestAggregateFutureNonScheduledIgnored(t *testing.T) {
	now := time.Now()
	person := uuid.New()
	appts := []repo.Appointment{
		appt(person, now.Add(2*time.Hour), repo.StatusCanceled),
		appt(person, now.Add(3*time.Hour), repo.StatusNoShow),
	}
	out := Aggregate(appts, now)
	s := out[person]
	assert.Nil(t, s.Last)
	assert.Nil(t, s.Next)
}

func TestAggregateBoundaryAtNow(t *testing.T) {
	// starts_at == now conta como passado (comparação é "não depois de now").
	now := time.Now().Truncate(time.Second)
	person := uuid.New()
	out := Aggregate([]repo.Appointment{appt(person, now, repo.StatusScheduled)}, now)
	s := out[person]
	require.NotNil(t, s.Last)
	assert.Nil(t, s.Next)
}

func TestAggregateMultiplePersons(t *testing.T) {
	now := time.Now()
	a, b := uuid.New(), uuid.New()
	appts := []repo.Appointment{
		appt(a, now.Add(-time.Hour), repo.StatusCompleted),
		appt(b, now.Add(time.Hour), repo.StatusScheduled),
	}
	out := Aggregate(appts, now)
	require.Len(t, out, 2)
	assert.NotNil(t, out[a].Last)
	assert.Nil(t, out[a].Next)
	assert.Nil(t, out[b].Last)
	assert.NotNil(t, out[b].Next)
}

func TestAggregateTieKeepsFirstSeen(t *testing.T) {
	now := time.Now()
	person := uuid.New()
	first := appt(person, now.Add(-time.Hour), repo.StatusCompleted)
	second := appt(person, now.Add(-time.Hour), repo.StatusCompleted)
	out := Aggregate([]repo.Appointment{first, second}, now)
	require.NotNil(t, out[person].Last)
	assert.Equal(t, first.ID, out[person].Last.ID)
}
