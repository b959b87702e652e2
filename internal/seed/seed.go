package seed

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/registro/backend/internal/auth"
	"github.com/registro/backend/internal/repo"
	"gorm.io/gorm"
)

// Run cria o usuário admin inicial quando a tabela está vazia e, em bases de
// demonstração, algumas pessoas de exemplo para a listagem não abrir vazia.
func Run(ctx context.Context, db *gorm.DB) error {
	n, err := repo.UsersCount(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("seed: usuários existem, nada a fazer")
		return nil
	}

	adminHash, err := auth.HashPassword("Admin123!")
	if err != nil {
		return err
	}
	adminID := uuid.New()
	if err := db.WithContext(ctx).Exec(`
		INSERT INTO users (id, email, password_hash, full_name, role, active)
		VALUES (?, ?, ?, ?, 'ADMIN', true)
	`, adminID, "admin@registro.local", adminHash, "Administrador").Error; err != nil {
		return err
	}
	log.Printf("seed: admin inicial criado (admin@registro.local)")

	staffHash, err := auth.HashPassword("ChangeMe123!")
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(`
		INSERT INTO users (id, email, password_hash, full_name, role, active)
		VALUES (?, 'recepcao@registro.local', ?, 'Recepção', 'STAFF', true)
	`, uuid.New(), staffHash).Error; err != nil {
		return err
	}

	return seedDemoPersons(ctx, db)
}

func seedDemoPersons(ctx context.Context, db *gorm.DB) error {
	var n int
	if err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM persons").Scan(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Printf("seed: base sem pessoas, inserindo exemplos")
	return db.WithContext(ctx).Exec(`
		INSERT INTO persons (id, kind, name, email, mobile_phone, birth_date, sex, marital_status, convenio, city, state, vip, active) VALUES
		(?, 'patient', 'Maria Silva', 'maria.silva@registro.local', '11999990000', '1985-03-15', 'female', 'married', 'Unimed', 'São Paulo', 'SP', false, true),
		(?, 'patient', 'João Santos', 'joao.santos@registro.local', '11888880000', '1990-07-22', 'male', 'single', NULL, 'Campinas', 'SP', true, true),
		(?, 'client', 'Ana Pereira', 'ana.pereira@registro.local', '21977770000', '1978-11-02', 'female', 'divorced', 'Bradesco Saúde', 'Rio de Janeiro', 'RJ', false, true)
	`, uuid.New(), uuid.New(), uuid.New()).Error
}
