// Package wizard modela o cadastro multi-etapas como uma sequência ordenada
// de etapas com predicado de validação. Avançar só é permitido quando a
// etapa corrente valida — a etapa final nunca é alcançável com etapa
// anterior pendente.
package wizard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/registro/backend/internal/brdoc"
)

var (
	ErrNameRequired = errors.New("nome é obrigatório (mínimo 2 caracteres)")
	ErrInvalidCPF   = errors.New("cpf inválido")
	ErrInvalidEmail = errors.New("email inválido")
	ErrInvalidCEP   = errors.New("cep deve ter 8 dígitos")
	ErrInvalidBirth = errors.New("data de nascimento inválida (use YYYY-MM-DD)")
)

// emailRegex: uma @ e domínio com ponto.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var birthRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Input são os campos do cadastro submetidos ao wizard. Tudo opcional menos
// o nome; os predicados validam formato apenas quando o campo veio.
type Input struct {
	Name        string
	SocialName  string
	CPF         string
	RG          string
	Email       string
	MobilePhone string
	Phone1      string
	Phone2      string
	BirthDate   string
	CEP         string
	Street      string
	City        string
	State       string
	MotherName  string
	FatherName  string
}

type Step struct {
	ID       string
	Title    string
	Validate func(Input) error
}

// Steps retorna a sequência canônica do cadastro: dados pessoais, contato,
// endereço, família e revisão.
func Steps() []Step {
	return []Step{
		{ID: "personal", Title: "Dados pessoais", Validate: validatePersonal},
		{ID: "contact", Title: "Contato", Validate: validateContact},
		{ID: "address", Title: "Endereço", Validate: validateAddress},
		{ID: "family", Title: "Família", Validate: func(Input) error { return nil }},
		{ID: "review", Title: "Revisão", Validate: validateAll},
	}
}

func validatePersonal(in Input) error {
	if len(strings.TrimSpace(in.Name)) < 2 {
		return ErrNameRequired
	}
	if !brdoc.ValidCPF(in.CPF) {
		return ErrInvalidCPF
	}
	if in.BirthDate != "" && !birthRegex.MatchString(in.BirthDate) {
		return ErrInvalidBirth
	}
	return nil
}

func validateContact(in Input) error {
	if in.Email != "" && !emailRegex.MatchString(strings.TrimSpace(in.Email)) {
		return ErrInvalidEmail
	}
	return nil
}

func validateAddress(in Input) error {
	if in.CEP != "" && len(brdoc.NormalizeCPF(in.CEP)) != 8 {
		return ErrInvalidCEP
	}
	return nil
}

func validateAll(in Input) error {
	for _, s := range Steps()[:3] {
		if err := s.Validate(in); err != nil {
			return err
		}
	}
	return nil
}

// Wizard mantém a etapa corrente. O índice só anda para frente depois que o
// predicado da etapa corrente aceita o input.
type Wizard struct {
	steps   []Step
	current int
}

func New() *Wizard {
	return &Wizard{steps: Steps()}
}

func (w *Wizard) Current() Step {
	return w.steps[w.current]
}

func (w *Wizard) AtLast() bool {
	return w.current == len(w.steps)-1
}

// Next valida a etapa corrente e avança. Na última etapa é no-op com erro
// nil quando o input valida.
func (w *Wizard) Next(in Input) error {
	if err := w.steps[w.current].Validate(in); err != nil {
		return fmt.Errorf("etapa %s: %w", w.steps[w.current].ID, err)
	}
	if w.current < len(w.steps)-1 {
		w.current++
	}
	return nil
}

// Prev volta uma etapa. Voltar nunca exige validação.
func (w *Wizard) Prev() {
	if w.current > 0 {
		w.current--
	}
}

// ValidateAll roda os predicados em ordem e devolve a primeira etapa que
// falha. Usado na submissão final (o servidor não confia no passo-a-passo
// do cliente).
func ValidateAll(in Input) (stepID string, err error) {
	for _, s := range Steps() {
		if err := s.Validate(in); err != nil {
			return s.ID, err
		}
	}
	return "", nil
}
