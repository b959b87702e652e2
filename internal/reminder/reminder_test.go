package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/registro/backend/internal/email"
	"github.com/registro/backend/internal/repo"
)

func strPtr(s string) *string { return &s }

func listOf(rows []repo.AppointmentReminderRow) ListFunc {
	return func(context.Context, time.Time) ([]repo.AppointmentReminderRow, error) {
		return rows, nil
	}
}

func TestSendAppointmentReminders_NilList(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	sent, skipped := SendAppointmentReminders(ctx, date, nil, nil)
	if sent != 0 || skipped != 0 {
		t.Errorf("list nil: got sent=%d skipped=%d, want 0,0", sent, skipped)
	}
}

func TestSendAppointmentReminders_ListError(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	list := func(context.Context, time.Time) ([]repo.AppointmentReminderRow, error) {
		return nil, errors.New("db error")
	}
	sender := &mockSender{failIndex: -1}
	sent, skipped := SendAppointmentReminders(ctx, date, sender, list)
	if sent != 0 || skipped != 0 {
		t.Errorf("list error: got sent=%d skipped=%d, want 0,0", sent, skipped)
	}
	if len(sender.calls) != 0 {
		t.Errorf("sender não deveria ser chamado, got %d", len(sender.calls))
	}
}

func TestSendAppointmentReminders_SenderNil_CountsSkipped(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	rows := []repo.AppointmentReminderRow{
		{AppointmentID: uuid.New(), PersonName: "Maria", PersonEmail: strPtr("maria@example.com"), StartsAt: date.Add(10 * time.Hour)},
		{AppointmentID: uuid.New(), PersonName: "João", PersonEmail: strPtr("joao@example.com"), StartsAt: date.Add(11 * time.Hour)},
	}
	sent, skipped := SendAppointmentReminders(ctx, date, nil, listOf(rows))
	if sent != 0 || skipped != 2 {
		t.Errorf("sender nil: got sent=%d skipped=%d, want 0,2", sent, skipped)
	}
}

func TestSendAppointmentReminders_AllSent(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	rows := []repo.AppointmentReminderRow{
		{AppointmentID: uuid.New(), PersonID: uuid.New(), PersonName: "Maria", PersonEmail: strPtr("maria@example.com"), StartsAt: time.Date(2026, 2, 12, 14, 30, 0, 0, time.UTC)},
		{AppointmentID: uuid.New(), PersonID: uuid.New(), PersonName: "João", PersonEmail: strPtr("joao@example.com"), StartsAt: time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC)},
	}
	sender := &mockSender{failIndex: -1} // nenhuma falha
	sent, skipped := SendAppointmentReminders(ctx, date, sender, listOf(rows))
	if sent != 2 || skipped != 0 {
		t.Errorf("all sent: got sent=%d skipped=%d, want 2,0", sent, skipped)
	}
	if len(sender.calls) != 2 {
		t.Fatalf("sender calls: got %d, want 2", len(sender.calls))
	}
	// Formato esperado: 02/01/2006 15:04
	if sender.calls[0].when != "12/02/2026 14:30" {
		t.Errorf("call 0 when: got %q", sender.calls[0].when)
	}
	for i, c := range sender.calls {
		if c.fullName != rows[i].PersonName || c.to != *rows[i].PersonEmail {
			t.Errorf("call %d: to=%q fullName=%q", i, c.to, c.fullName)
		}
	}
}

func TestSendAppointmentReminders_SkipsMissingEmail(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	rows := []repo.AppointmentReminderRow{
		{AppointmentID: uuid.New(), PersonName: "Maria", PersonEmail: strPtr("maria@example.com"), StartsAt: date.Add(10 * time.Hour)},
		{AppointmentID: uuid.New(), PersonName: "Sem Email", PersonEmail: nil, StartsAt: date.Add(11 * time.Hour)},
		{AppointmentID: uuid.New(), PersonName: "Vazio", PersonEmail: strPtr(""), StartsAt: date.Add(12 * time.Hour)},
	}
	sender := &mockSender{failIndex: -1}
	sent, skipped := SendAppointmentReminders(ctx, date, sender, listOf(rows))
	if sent != 1 || skipped != 2 {
		t.Errorf("missing email: got sent=%d skipped=%d, want 1,2", sent, skipped)
	}
}

func TestSendAppointmentReminders_PartialFail(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	rows := []repo.AppointmentReminderRow{
		{AppointmentID: uuid.New(), PersonName: "Maria", PersonEmail: strPtr("maria@example.com"), StartsAt: date.Add(10 * time.Hour)},
		{AppointmentID: uuid.New(), PersonName: "João", PersonEmail: strPtr("joao@example.com"), StartsAt: date.Add(11 * time.Hour)},
		{AppointmentID: uuid.New(), PersonName: "Pedro", PersonEmail: strPtr("pedro@example.com"), StartsAt: date.Add(12 * time.Hour)},
	}
	// Falha na segunda chamada (índice 1)
	sender := &mockSender{failIndex: 1}
	sent, skipped := SendAppointmentReminders(ctx, date, sender, listOf(rows))
	if sent != 2 || skipped != 1 {
		t.Errorf("partial fail: got sent=%d skipped=%d, want 2,1", sent, skipped)
	}
}

func TestDefaultEmailSender_NilWhenUnconfigured(t *testing.T) {
	if DefaultEmailSender(nil) != nil {
		t.Error("expected nil when cfg nil")
	}
	if DefaultEmailSender(&email.Config{FromAddr: "a@b.c"}) != nil {
		t.Error("expected nil when host empty")
	}
	if DefaultEmailSender(&email.Config{Host: "smtp.local"}) != nil {
		t.Error("expected nil when from empty")
	}
}

func TestDefaultEmailSender_NonNilWhenConfigured(t *testing.T) {
	c := DefaultEmailSender(&email.Config{Host: "smtp.local", FromAddr: "noreply@registro.local"})
	if c == nil {
		t.Error("expected non-nil sender when host and from set")
	}
}

// mockSender implementa EmailSender e grava as chamadas.
type mockSender struct {
	calls     []sendCall
	failIndex int // índice da chamada que deve falhar (-1 = nenhuma)
}

type sendCall struct {
	to, fullName, when string
}

func (m *mockSender) SendAppointmentReminder(to, fullName, when string) error {
	m.calls = append(m.calls, sendCall{to, fullName, when})
	if m.failIndex >= 0 && len(m.calls)-1 == m.failIndex {
		return errors.New("mock send error")
	}
	return nil
}
