// Package pdf gera a ficha cadastral de uma pessoa em PDF, com QR code de
// verificação apontando para o registro no backend.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/registro/backend/internal/brdoc"
	"github.com/registro/backend/internal/repo"
	"github.com/skip2/go-qrcode"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// orDash devolve o placeholder de exibição quando o valor está vazio.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func kindLabel(kind string) string {
	switch kind {
	case repo.KindClient:
		return "Cliente"
	case repo.KindPatient:
		return "Paciente"
	default:
		return kind
	}
}

func sheetRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, orDash(value), "", "L", false)
}

// BuildPersonSheetPDF gera a ficha cadastral em A4. verificationURL, quando
// presente, vira um QR code no rodapé (normalmente BACKEND_PUBLIC_URL +
// /api/<kind>s/<id>).
func BuildPersonSheetPDF(p repo.Person, verificationURL string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Ficha Cadastral - "+kindLabel(p.Kind), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "ID: "+p.ID.String(), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Dados pessoais", "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	sheetRow(pdf, "Nome", p.Name)
	sheetRow(pdf, "Nome social", deref(p.SocialName))
	sheetRow(pdf, "CPF", brdoc.MaskCPF(deref(p.CPF)))
	sheetRow(pdf, "RG", deref(p.RG))
	sheetRow(pdf, "Nascimento", deref(p.BirthDate))
	sheetRow(pdf, "Profissao", deref(p.Profession))
	sheetRow(pdf, "Convenio", deref(p.Convenio))
	if p.VIP {
		sheetRow(pdf, "VIP", "Sim")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Contato", "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	sheetRow(pdf, "E-mail", deref(p.Email))
	sheetRow(pdf, "Celular", brdoc.DisplayPhone(deref(p.MobilePhone)))
	sheetRow(pdf, "Telefone 1", brdoc.DisplayPhone(deref(p.Phone1)))
	sheetRow(pdf, "Telefone 2", brdoc.DisplayPhone(deref(p.Phone2)))
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Endereco", "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	sheetRow(pdf, "CEP", brdoc.MaskCEP(deref(p.CEP)))
	street := deref(p.Street)
	if n := deref(p.AddressNumber); street != "" && n != "" {
		street = street + ", " + n
	}
	sheetRow(pdf, "Logradouro", street)
	sheetRow(pdf, "Complemento", deref(p.Complement))
	sheetRow(pdf, "Bairro", deref(p.Neighborhood))
	city := deref(p.City)
	if uf := deref(p.State); city != "" && uf != "" {
		city = city + " / " + uf
	}
	sheetRow(pdf, "Cidade", city)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Filiacao", "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	sheetRow(pdf, "Mae", deref(p.MotherName))
	sheetRow(pdf, "Pai", deref(p.FatherName))

	if obs := deref(p.Observations); obs != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Observacoes", "B", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, obs, "", "L", false)
	}

	if verificationURL != "" {
		pdf.Ln(6)
		qrPNG, err := qrcode.Encode(verificationURL, qrcode.Medium, 128)
		if err == nil {
			tmpFile, err := os.CreateTemp("", "qr-*.png")
			if err == nil {
				tmpFile.Write(qrPNG)
				path := tmpFile.Name()
				tmpFile.Close()
				defer os.Remove(path)
				pdf.RegisterImage(path, "PNG")
				pdf.Image(path, 15, pdf.GetY(), 30, 30, false, "", 0, "")
				pdf.SetY(pdf.GetY() + 32)
			}
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, "Verificacao: "+verificationURL, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SheetFilename nomeia o arquivo baixado a partir do ID da pessoa.
func SheetFilename(p repo.Person) string {
	return fmt.Sprintf("ficha-%s.pdf", p.ID.String())
}

// WriteSheetTo escreve a ficha no writer (para resposta HTTP ou arquivo).
func WriteSheetTo(p repo.Person, verificationURL string, w io.Writer) error {
	b, err := BuildPersonSheetPDF(p, verificationURL)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
