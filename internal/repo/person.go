package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subtipos de pessoa. O shape é o mesmo; a política de exclusão difere
// (client sempre arquiva, patient só arquiva quando há atendimentos).
const (
	KindClient  = "client"
	KindPatient = "patient"
)

type Person struct {
	ID            uuid.UUID
	Kind          string
	Name          string
	SocialName    *string
	CPF           *string `gorm:"column:cpf"`
	CPFHash       *string `gorm:"column:cpf_hash"`
	RG            *string `gorm:"column:rg"`
	DocumentType  *string
	Email         *string
	MobilePhone   *string
	Phone1        *string
	Phone2        *string
	BirthDate     *string
	Sex           string
	MaritalStatus string
	Profession    *string
	Convenio      *string
	CEP           *string `gorm:"column:cep"`
	Street        *string
	AddressNumber *string
	Complement    *string
	Neighborhood  *string
	City          *string
	State         *string
	MotherName    *string
	FatherName    *string
	Observations  *string
	VIP           bool `gorm:"column:vip"`
	Active        bool
	PhotoPath     *string
	CreatedAt     string
	UpdatedAt     string
}

// PersonFilter é o conjunto de filtros empurrados para o banco. O filtro de
// mês de aniversário NÃO entra aqui: ele é aplicado em memória depois da
// página (ver listquery).
type PersonFilter struct {
	Name     string
	Convenio string
	VIPOnly  bool
	City     string
	State    string
}

const personColumns = `
	id, kind, name, social_name, cpf, cpf_hash, rg, document_type, email,
	mobile_phone, phone1, phone2, birth_date::text, sex, marital_status,
	profession, convenio, cep, street, address_number, complement,
	neighborhood, city, state, mother_name, father_name, observations,
	vip, active, photo_path, created_at::text, updated_at::text
`

func filterConditions(kind string, f PersonFilter) (string, []interface{}) {
	conds := []string{"kind = ?"}
	args := []interface{}{kind}
	if f.Name != "" {
		conds = append(conds, "name ILIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.Convenio != "" {
		conds = append(conds, "convenio ILIKE ?")
		args = append(args, "%"+f.Convenio+"%")
	}
	if f.VIPOnly {
		conds = append(conds, "vip = true")
	}
	if f.City != "" {
		conds = append(conds, "city ILIKE ?")
		args = append(args, "%"+f.City+"%")
	}
	if f.State != "" {
		conds = append(conds, "state ILIKE ?")
		args = append(args, "%"+f.State+"%")
	}
	return strings.Join(conds, " AND "), args
}

// PersonsFiltered returns one page matching the filter, newest update first.
func PersonsFiltered(ctx context.Context, db *gorm.DB, kind string, f PersonFilter, limit, offset int) ([]Person, error) {
	where, args := filterConditions(kind, f)
	q := `SELECT ` + personColumns + ` FROM persons WHERE ` + where + ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	var list []Person
	err := db.WithContext(ctx).Raw(q, args...).Scan(&list).Error
	return list, err
}

// PersonsFilteredCount returns the exact match count for the filter. The
// count deliberately ignores the birth-month post-filter.
func PersonsFilteredCount(ctx context.Context, db *gorm.DB, kind string, f PersonFilter) (int, error) {
	where, args := filterConditions(kind, f)
	var n int
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM persons WHERE `+where, args...).Scan(&n).Error
	return n, err
}

func PersonByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Person, error) {
	var p Person
	err := db.WithContext(ctx).Raw(`SELECT `+personColumns+` FROM persons WHERE id = ?`, id).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func CreatePerson(ctx context.Context, db *gorm.DB, p *Person) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO persons (
			kind, name, social_name, cpf, cpf_hash, rg, document_type, email,
			mobile_phone, phone1, phone2, birth_date, sex, marital_status,
			profession, convenio, cep, street, address_number, complement,
			neighborhood, city, state, mother_name, father_name, observations, vip
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, p.Kind, p.Name, p.SocialName, p.CPF, p.CPFHash, p.RG, p.DocumentType, p.Email,
		p.MobilePhone, p.Phone1, p.Phone2, p.BirthDate, p.Sex, p.MaritalStatus,
		p.Profession, p.Convenio, p.CEP, p.Street, p.AddressNumber, p.Complement,
		p.Neighborhood, p.City, p.State, p.MotherName, p.FatherName, p.Observations, p.VIP).
		Scan(&res).Error
	return res.ID, err
}

func UpdatePerson(ctx context.Context, db *gorm.DB, id uuid.UUID, p *Person) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE persons SET
			name = ?, social_name = ?, cpf = ?, cpf_hash = ?, rg = ?,
			document_type = ?, email = ?, mobile_phone = ?, phone1 = ?, phone2 = ?,
			birth_date = ?, sex = ?, marital_status = ?, profession = ?, convenio = ?,
			cep = ?, street = ?, address_number = ?, complement = ?, neighborhood = ?,
			city = ?, state = ?, mother_name = ?, father_name = ?, observations = ?,
			vip = ?, updated_at = now()
		WHERE id = ?
	`, p.Name, p.SocialName, p.CPF, p.CPFHash, p.RG,
		p.DocumentType, p.Email, p.MobilePhone, p.Phone1, p.Phone2,
		p.BirthDate, p.Sex, p.MaritalStatus, p.Profession, p.Convenio,
		p.CEP, p.Street, p.AddressNumber, p.Complement, p.Neighborhood,
		p.City, p.State, p.MotherName, p.FatherName, p.Observations,
		p.VIP, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ArchivePerson is the soft delete: the row stays queryable with active=false.
func ArchivePerson(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE persons SET active = false, updated_at = now() WHERE id = ? AND active = true
	`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func HardDeletePerson(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Exec(`DELETE FROM persons WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func SetPersonPhotoPath(ctx context.Context, db *gorm.DB, id uuid.UUID, path string) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE persons SET photo_path = ?, updated_at = now() WHERE id = ?
	`, path, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
