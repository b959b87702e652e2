package api

import (
	"net/http/httptest"
	"testing"

	"github.com/registro/backend/internal/brdoc"
)

func sp(s string) *string { return &s }

func TestValidateEnums(t *testing.T) {
	cases := []struct {
		name    string
		req     PersonRequest
		wantErr error
	}{
		{"empty enums ok", PersonRequest{Name: "Maria"}, nil},
		{"valid sex", PersonRequest{Name: "Maria", Sex: "female"}, nil},
		{"invalid sex", PersonRequest{Name: "Maria", Sex: "F"}, ErrInvalidSex},
		{"valid marital", PersonRequest{Name: "Maria", MaritalStatus: "civil_union"}, nil},
		{"invalid marital", PersonRequest{Name: "Maria", MaritalStatus: "casada"}, ErrInvalidMarital},
		{"valid document type", PersonRequest{Name: "Maria", DocumentType: sp("CNH")}, nil},
		{"invalid document type", PersonRequest{Name: "Maria", DocumentType: sp("cnh")}, ErrInvalidDocumentType},
		{"blank document type ignored", PersonRequest{Name: "Maria", DocumentType: sp("  ")}, nil},
	}
	for _, c := range cases {
		if err := c.req.ValidateEnums(); err != c.wantErr {
			t.Errorf("%s: got %v, want %v", c.name, err, c.wantErr)
		}
	}
}

func TestToPersonNormalizesCPF(t *testing.T) {
	req := PersonRequest{Name: " Maria Silva ", CPF: sp("111.444.777-35")}
	p := req.ToPerson("patient")
	if p.Name != "Maria Silva" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.CPF == nil || *p.CPF != "11144477735" {
		t.Errorf("cpf: got %v, want digits only", p.CPF)
	}
	if p.CPFHash == nil || *p.CPFHash != brdoc.CPFHash("11144477735") {
		t.Error("cpf_hash should be the hash of the normalized cpf")
	}
}

func TestToPersonEmptyCPFLeavesNil(t *testing.T) {
	req := PersonRequest{Name: "Maria"}
	p := req.ToPerson("client")
	if p.CPF != nil || p.CPFHash != nil {
		t.Error("empty cpf must stay nil (partial unique index ignores nulls)")
	}
}

func TestToPersonDefaultsEnums(t *testing.T) {
	p := (&PersonRequest{Name: "Maria"}).ToPerson("patient")
	if p.Sex != "unspecified" || p.MaritalStatus != "unspecified" {
		t.Errorf("defaults: sex=%q marital=%q", p.Sex, p.MaritalStatus)
	}
	if p.Kind != "patient" {
		t.Errorf("kind: got %q", p.Kind)
	}
}

func TestToPersonCEPDigitsOnly(t *testing.T) {
	p := (&PersonRequest{Name: "Maria", CEP: sp("01310-100")}).ToPerson("client")
	if p.CEP == nil || *p.CEP != "01310100" {
		t.Errorf("cep: got %v", p.CEP)
	}
}

func TestTrimToNil(t *testing.T) {
	if trimToNil(nil) != nil {
		t.Error("nil in, nil out")
	}
	if trimToNil(sp("   ")) != nil {
		t.Error("blank string must become nil")
	}
	if got := trimToNil(sp(" x ")); got == nil || *got != "x" {
		t.Errorf("got %v, want trimmed value", got)
	}
}

func TestWizardInputProjection(t *testing.T) {
	req := PersonRequest{
		Name:      "Maria",
		CPF:       sp("111.444.777-35"),
		Email:     sp("maria@example.com"),
		BirthDate: sp("1985-03-15"),
	}
	in := req.wizardInput()
	if in.Name != "Maria" || in.CPF != "111.444.777-35" || in.Email != "maria@example.com" || in.BirthDate != "1985-03-15" {
		t.Errorf("projection mismatch: %+v", in)
	}
}

func TestFilterFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/patients?name=ma&convenio=uni&vip=true&city=sp&state=SP&birth_month=3", nil)
	f := filterFromQuery(r, "patient")
	if f.Kind != "patient" || f.Name != "ma" || f.Convenio != "uni" || !f.VIPOnly || f.City != "sp" || f.State != "SP" || f.BirthMonth != 3 {
		t.Errorf("filter mismatch: %+v", f)
	}
}

func TestFilterFromQueryIgnoresBadBirthMonth(t *testing.T) {
	for _, bad := range []string{"0", "13", "abc"} {
		r := httptest.NewRequest("GET", "/api/patients?birth_month="+bad, nil)
		if f := filterFromQuery(r, "patient"); f.BirthMonth != 0 {
			t.Errorf("birth_month=%s: got %d, want 0", bad, f.BirthMonth)
		}
	}
}

func TestParsePage(t *testing.T) {
	cases := map[string]int{"": 0, "0": 0, "3": 3, "-1": 0, "x": 0}
	for q, want := range cases {
		url := "/api/patients"
		if q != "" {
			url += "?page=" + q
		}
		r := httptest.NewRequest("GET", url, nil)
		if got := ParsePage(r); got != want {
			t.Errorf("page=%q: got %d, want %d", q, got, want)
		}
	}
}

func TestOnlyDigits(t *testing.T) {
	if got := onlyDigits("01310-100"); got != "01310100" {
		t.Errorf("got %q", got)
	}
	if got := onlyDigits("abc"); got != "" {
		t.Errorf("got %q", got)
	}
}
