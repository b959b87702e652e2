package reminder

import (
	"context"
	"log"
	"time"

	"github.com/registro/backend/internal/email"
	"github.com/registro/backend/internal/repo"
	"gorm.io/gorm"
)

// EmailSender sends one reminder to a recipient.
type EmailSender interface {
	SendAppointmentReminder(to, fullName, when string) error
}

// ListFunc carrega os atendimentos agendados de uma data que devem receber
// lembrete.
type ListFunc func(ctx context.Context, date time.Time) ([]repo.AppointmentReminderRow, error)

// DBLister lista os atendimentos direto do banco.
func DBLister(db *gorm.DB) ListFunc {
	return func(ctx context.Context, date time.Time) ([]repo.AppointmentReminderRow, error) {
		return repo.AppointmentsForReminder(ctx, db, date)
	}
}

// SendAppointmentReminders carrega os atendimentos agendados para a data
// (amanhã, na prática) e envia um e-mail por atendimento cuja pessoa tenha
// e-mail cadastrado. Falha por destinatário é logada e não interrompe o resto.
func SendAppointmentReminders(ctx context.Context, date time.Time, sender EmailSender, list ListFunc) (sent int, skipped int) {
	if list == nil {
		log.Printf("[reminder] sem fonte de atendimentos, nada a fazer")
		return 0, 0
	}
	rows, err := list(ctx, date)
	if err != nil {
		log.Printf("[reminder] carregar atendimentos: %v", err)
		return 0, 0
	}
	if sender == nil {
		log.Printf("[reminder] SMTP não configurado, enviaria %d lembretes", len(rows))
		return 0, len(rows)
	}
	for _, r := range rows {
		if r.PersonEmail == nil || *r.PersonEmail == "" {
			log.Printf("[reminder] sem e-mail appointment=%s person=%s, pulando", r.AppointmentID, r.PersonID)
			skipped++
			continue
		}
		when := r.StartsAt.Format("02/01/2006 15:04")
		if err := sender.SendAppointmentReminder(*r.PersonEmail, r.PersonName, when); err != nil {
			log.Printf("[reminder] send failed appointment=%s person=%s email=%s: %v", r.AppointmentID, r.PersonID, *r.PersonEmail, err)
			skipped++
			continue
		}
		sent++
		log.Printf("[reminder] sent appointment=%s to %s", r.AppointmentID, *r.PersonEmail)
	}
	return sent, skipped
}

// DefaultEmailSender returns the SMTP config as a sender, or nil when the
// host is not configured (envio vira no-op contabilizado como skipped).
func DefaultEmailSender(cfg *email.Config) EmailSender {
	if cfg == nil || cfg.Host == "" || cfg.FromAddr == "" {
		return nil
	}
	return cfg
}
