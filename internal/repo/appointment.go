package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status de atendimento. Criação sempre começa em scheduled; as transições
// seguintes vêm de fora (PATCH), o serviço não as orquestra.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusNoShow    = "no_show"
)

type Appointment struct {
	ID       uuid.UUID
	PersonID uuid.UUID
	StartsAt time.Time
	EndsAt   *time.Time
	Status   string
	Notes    *string
}

func ValidAppointmentStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

func CreateAppointment(ctx context.Context, db *gorm.DB, personID uuid.UUID, startsAt time.Time, endsAt *time.Time, notes *string) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO appointments (person_id, starts_at, ends_at, status, notes)
		VALUES (?, ?, ?, 'scheduled', ?)
		RETURNING id
	`, personID, startsAt, endsAt, notes).Scan(&res).Error
	return res.ID, err
}

func AppointmentByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := db.WithContext(ctx).Raw(`
		SELECT id, person_id, starts_at, ends_at, status, notes
		FROM appointments WHERE id = ?
	`, id).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func AppointmentsByPerson(ctx context.Context, db *gorm.DB, personID uuid.UUID) ([]Appointment, error) {
	var list []Appointment
	err := db.WithContext(ctx).Raw(`
		SELECT id, person_id, starts_at, ends_at, status, notes
		FROM appointments WHERE person_id = ? ORDER BY starts_at
	`, personID).Scan(&list).Error
	return list, err
}

// AppointmentsByPersonIDs retorna todos os atendimentos cujo dono está no
// conjunto, em uma query só (entrada da agregação último/próximo).
func AppointmentsByPersonIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]Appointment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := fmt.Sprintf(`
		SELECT id, person_id, starts_at, ends_at, status, notes
		FROM appointments WHERE person_id IN (%s)
	`, strings.Join(placeholders, ", "))
	var list []Appointment
	err := db.WithContext(ctx).Raw(q, args...).Scan(&list).Error
	return list, err
}

func AppointmentsCountByPerson(ctx context.Context, db *gorm.DB, personID uuid.UUID) (int, error) {
	var n int
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM appointments WHERE person_id = ?`, personID).Scan(&n).Error
	return n, err
}

// UpdateAppointment aplica um patch parcial: campos nil ficam como estão.
func UpdateAppointment(ctx context.Context, db *gorm.DB, id uuid.UUID, startsAt, endsAt *time.Time, status *string, notes *string) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE appointments SET
			starts_at = COALESCE(?, starts_at),
			ends_at = COALESCE(?, ends_at),
			status = COALESCE(?, status),
			notes = COALESCE(?, notes),
			updated_at = now()
		WHERE id = ?
	`, startsAt, endsAt, status, notes, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppointmentReminderRow é uma linha do lembrete diário: atendimento de
// amanhã + contato da pessoa.
type AppointmentReminderRow struct {
	AppointmentID uuid.UUID
	PersonID      uuid.UUID
	PersonName    string
	PersonEmail   *string
	StartsAt      time.Time
}

// AppointmentsForReminder lista atendimentos scheduled do dia informado
// (intervalo [date, date+24h) no fuso do caller).
func AppointmentsForReminder(ctx context.Context, db *gorm.DB, date time.Time) ([]AppointmentReminderRow, error) {
	var list []AppointmentReminderRow
	err := db.WithContext(ctx).Raw(`
		SELECT a.id AS appointment_id, p.id AS person_id, p.name AS person_name,
		       p.email AS person_email, a.starts_at
		FROM appointments a
		JOIN persons p ON p.id = a.person_id
		WHERE a.status = 'scheduled' AND a.starts_at >= ? AND a.starts_at < ?
		ORDER BY a.starts_at
	`, date, date.Add(24*time.Hour)).Scan(&list).Error
	return list, err
}
