package api

import (
	"errors"
	"strings"

	"github.com/registro/backend/internal/brdoc"
	"github.com/registro/backend/internal/repo"
	"github.com/registro/backend/internal/wizard"
)

var (
	ErrInvalidSex          = errors.New("sexo inválido")
	ErrInvalidMarital      = errors.New("estado civil inválido")
	ErrInvalidDocumentType = errors.New("tipo de documento inválido")
	ErrInvalidStatus       = errors.New("status de atendimento inválido")
)

// PersonRequest é o corpo de criação/atualização de pessoa. Shape único para
// cliente e paciente; o subtipo vem da rota.
type PersonRequest struct {
	Name          string  `json:"name"`
	SocialName    *string `json:"social_name"`
	CPF           *string `json:"cpf"`
	RG            *string `json:"rg"`
	DocumentType  *string `json:"document_type"`
	Email         *string `json:"email"`
	MobilePhone   *string `json:"mobile_phone"`
	Phone1        *string `json:"phone1"`
	Phone2        *string `json:"phone2"`
	BirthDate     *string `json:"birth_date"`
	Sex           string  `json:"sex"`
	MaritalStatus string  `json:"marital_status"`
	Profession    *string `json:"profession"`
	Convenio      *string `json:"convenio"`
	CEP           *string `json:"cep"`
	Street        *string `json:"street"`
	AddressNumber *string `json:"address_number"`
	Complement    *string `json:"complement"`
	Neighborhood  *string `json:"neighborhood"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	MotherName    *string `json:"mother_name"`
	FatherName    *string `json:"father_name"`
	Observations  *string `json:"observations"`
	VIP           bool    `json:"vip"`
}

var validSex = map[string]bool{"male": true, "female": true, "unspecified": true}

var validMarital = map[string]bool{
	"single": true, "married": true, "divorced": true, "widowed": true,
	"civil_union": true, "other": true, "unspecified": true,
}

var validDocumentType = map[string]bool{
	"RG": true, "CNH": true, "PASSPORT": true, "FOREIGN_ID": true, "OTHER": true,
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimToNil normaliza ponteiros de string: espaço só não conta como valor.
func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// wizardInput projeta o request nos campos que o wizard valida.
func (req *PersonRequest) wizardInput() wizard.Input {
	return wizard.Input{
		Name:        req.Name,
		SocialName:  deref(req.SocialName),
		CPF:         deref(req.CPF),
		RG:          deref(req.RG),
		Email:       deref(req.Email),
		MobilePhone: deref(req.MobilePhone),
		Phone1:      deref(req.Phone1),
		Phone2:      deref(req.Phone2),
		BirthDate:   deref(req.BirthDate),
		CEP:         deref(req.CEP),
		Street:      deref(req.Street),
		City:        deref(req.City),
		State:       deref(req.State),
		MotherName:  deref(req.MotherName),
		FatherName:  deref(req.FatherName),
	}
}

// ValidateEnums valida os campos de enumeração do request. O restante
// (nome, cpf, email, cep, nascimento) é papel do wizard.
func (req *PersonRequest) ValidateEnums() error {
	if req.Sex != "" && !validSex[req.Sex] {
		return ErrInvalidSex
	}
	if req.MaritalStatus != "" && !validMarital[req.MaritalStatus] {
		return ErrInvalidMarital
	}
	if dt := trimToNil(req.DocumentType); dt != nil && !validDocumentType[*dt] {
		return ErrInvalidDocumentType
	}
	return nil
}

// ToPerson monta o registro persistível: CPF normalizado para dígitos, hash
// para o índice de unicidade, enums com default unspecified.
func (req *PersonRequest) ToPerson(kind string) *repo.Person {
	p := &repo.Person{
		Kind:          kind,
		Name:          strings.TrimSpace(req.Name),
		SocialName:    trimToNil(req.SocialName),
		RG:            trimToNil(req.RG),
		DocumentType:  trimToNil(req.DocumentType),
		Email:         trimToNil(req.Email),
		MobilePhone:   trimToNil(req.MobilePhone),
		Phone1:        trimToNil(req.Phone1),
		Phone2:        trimToNil(req.Phone2),
		BirthDate:     trimToNil(req.BirthDate),
		Sex:           req.Sex,
		MaritalStatus: req.MaritalStatus,
		Profession:    trimToNil(req.Profession),
		Convenio:      trimToNil(req.Convenio),
		CEP:           trimToNil(req.CEP),
		Street:        trimToNil(req.Street),
		AddressNumber: trimToNil(req.AddressNumber),
		Complement:    trimToNil(req.Complement),
		Neighborhood:  trimToNil(req.Neighborhood),
		City:          trimToNil(req.City),
		State:         trimToNil(req.State),
		MotherName:    trimToNil(req.MotherName),
		FatherName:    trimToNil(req.FatherName),
		Observations:  trimToNil(req.Observations),
		VIP:           req.VIP,
	}
	if p.Sex == "" {
		p.Sex = "unspecified"
	}
	if p.MaritalStatus == "" {
		p.MaritalStatus = "unspecified"
	}
	if cpf := brdoc.NormalizeCPF(deref(req.CPF)); cpf != "" {
		hash := brdoc.CPFHash(cpf)
		p.CPF = &cpf
		p.CPFHash = &hash
	}
	if cep := trimToNil(req.CEP); cep != nil {
		digits := onlyDigits(*cep)
		p.CEP = &digits
	}
	return p
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
