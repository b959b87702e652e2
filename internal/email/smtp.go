package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"text/template"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	FromName string
	FromAddr string
}

func (c *Config) Send(to, subject, body string, html bool) error {
	// Validação de config e destinatário
	if to == "" {
		log.Printf("[email] erro de config: destinatário (to) vazio")
		return fmt.Errorf("destinatário de e-mail vazio")
	}
	if c.Host == "" {
		log.Printf("[email] erro de config: SMTP host vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP host não configurado")
	}
	if c.FromAddr == "" {
		log.Printf("[email] erro de config: SMTP FromAddr vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP remetente (From) não configurado")
	}
	port := c.Port
	if port == 0 {
		port = 25
	}
	addr := fmt.Sprintf("%s:%d", c.Host, port)
	log.Printf("[email] enviando para %s assunto=%q via %s (from=%s)", to, subject, addr, c.FromAddr)
	from := c.FromAddr
	if c.FromName != "" {
		from = fmt.Sprintf("%s <%s>", c.FromName, c.FromAddr)
	}
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"Content-Type": "text/plain; charset=UTF-8",
	}
	if html {
		headers["Content-Type"] = "text/html; charset=UTF-8"
	}
	var buf bytes.Buffer
	for k, v := range headers {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(body)
	err := smtp.SendMail(addr, c.authForSend(), c.FromAddr, []string{to}, buf.Bytes())
	if err != nil {
		log.Printf("[email] falha ao enviar para %s assunto=%q: %v", to, subject, err)
		return err
	}
	log.Printf("[email] enviado com sucesso para %s assunto=%q", to, subject)
	return nil
}

// authForSend returns nil when User is empty (e.g. MailHog), so no AUTH is sent.
func (c *Config) authForSend() smtp.Auth {
	if c.User != "" {
		return smtp.PlainAuth("", c.User, c.Pass, c.Host)
	}
	return nil
}

// SendAppointmentConfirmation avisa a pessoa que um atendimento foi marcado.
func (c *Config) SendAppointmentConfirmation(to, fullName, when string) error {
	if to == "" || when == "" {
		log.Printf("[email] SendAppointmentConfirmation: to ou when vazio")
		return fmt.Errorf("to ou when vazio")
	}
	tpl := `Olá, {{.FullName}},

Seu atendimento foi agendado para {{.When}}.

Se precisar remarcar ou cancelar, entre em contato com a recepção.`
	t, err := template.New("").Parse(tpl)
	if err != nil {
		log.Printf("[email] SendAppointmentConfirmation: erro ao parsear template: %v", err)
		return err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, map[string]string{"FullName": fullName, "When": when}); err != nil {
		log.Printf("[email] SendAppointmentConfirmation: erro ao executar template: %v", err)
		return err
	}
	return c.Send(to, "Atendimento agendado - Registro", b.String(), false)
}

// SendAppointmentReminder lembra a pessoa de um atendimento no dia seguinte.
func (c *Config) SendAppointmentReminder(to, fullName, when string) error {
	if to == "" || when == "" {
		log.Printf("[email] SendAppointmentReminder: to ou when vazio")
		return fmt.Errorf("to ou when vazio")
	}
	tpl := `Olá, {{.FullName}},

Lembrete: você tem um atendimento agendado para {{.When}}.

Se não puder comparecer, avise a recepção com antecedência.`
	t, err := template.New("").Parse(tpl)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, map[string]string{"FullName": fullName, "When": when}); err != nil {
		return err
	}
	return c.Send(to, "Lembrete de atendimento - Registro", b.String(), false)
}

// LogConfigSummary loga um resumo da config SMTP (sem senha) para diagnóstico.
func (c *Config) LogConfigSummary() {
	auth := "não"
	if c.User != "" {
		auth = "sim (user=" + c.User + ")"
	}
	log.Printf("[email] config SMTP: host=%s port=%d from=%q auth=%s", c.Host, c.Port, c.FromAddr, auth)
	if c.Host == "" || c.FromAddr == "" {
		log.Printf("[email] aviso: host ou from vazio; envios podem falhar")
	}
}

func PortFromString(s string) int {
	n, err := strconv.Atoi(s)
	_ = err
	return n
}

// SendWithAttachment envia a ficha cadastral (PDF) como anexo multipart.
func (c *Config) SendWithAttachment(to, subject, body string, attachmentName string, attachmentPDF []byte) error {
	if to == "" {
		log.Printf("[email] erro de config: destinatário vazio (anexo)")
		return fmt.Errorf("destinatário de e-mail vazio")
	}
	if c.Host == "" || c.FromAddr == "" {
		log.Printf("[email] erro de config: host ou from vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP host ou remetente não configurado")
	}
	port := c.Port
	if port == 0 {
		port = 25
	}
	addr := fmt.Sprintf("%s:%d", c.Host, port)
	from := c.FromAddr
	if c.FromName != "" {
		from = fmt.Sprintf("%s <%s>", c.FromName, c.FromAddr)
	}
	msg := attachmentMessage(from, to, subject, body, attachmentName, attachmentPDF)
	log.Printf("[email] enviando com anexo para %s assunto=%q via %s", to, subject, addr)
	err := smtp.SendMail(addr, c.authForSend(), c.FromAddr, []string{to}, msg)
	if err != nil {
		log.Printf("[email] falha ao enviar anexo para %s assunto=%q: %v", to, subject, err)
		return err
	}
	log.Printf("[email] enviado com anexo para %s assunto=%q", to, subject)
	return nil
}

// attachmentMessage monta a mensagem multipart/mixed: corpo texto + PDF base64.
func attachmentMessage(from, to, subject, body, attachmentName string, attachmentPDF []byte) []byte {
	boundary := "boundary-registro-pdf"
	var buf bytes.Buffer
	buf.WriteString("From: " + from + "\r\n")
	buf.WriteString("To: " + to + "\r\n")
	buf.WriteString("Subject: " + subject + "\r\n")
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n\r\n")
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n--" + boundary + "\r\n")
	buf.WriteString("Content-Type: application/pdf; name=\"" + attachmentName + "\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString("Content-Disposition: attachment; filename=\"" + attachmentName + "\"\r\n\r\n")
	// RFC 2045: base64 em MIME deve ter linhas de no máximo 76 caracteres
	encoded := base64.StdEncoding.EncodeToString(attachmentPDF)
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		buf.WriteString(encoded[i:end] + "\r\n")
	}
	buf.WriteString("\r\n--" + boundary + "--\r\n")
	return buf.Bytes()
}
