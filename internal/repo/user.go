package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	Active       bool
}

func UserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error) {
	var u User
	err := db.WithContext(ctx).Raw(`
		SELECT id, email, password_hash, full_name, role, active
		FROM users WHERE lower(email) = lower(?) AND active = true
	`, email).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash, fullName, role string) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO users (email, password_hash, full_name, role)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, email, passwordHash, fullName, role).Scan(&res).Error
	return res.ID, err
}

func UsersCount(ctx context.Context, db *gorm.DB) (int, error) {
	var n int
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM users`).Scan(&n).Error
	return n, err
}
