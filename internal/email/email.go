package email

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"hse-compliance/internal/config"
)

// Service handles email operations
type Service struct {
	config *config.EmailConfig
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{
		config: cfg,
	}
}

// SendAssignmentInvitation sends the intake link to an inspector
func (s *Service) SendAssignmentInvitation(to, supplierName, questionnaireTitle, token string) error {
	subject := fmt.Sprintf("Questionario HSE da compilare: %s", supplierName)
	intakeURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.config.IntakeURL, "/"), token)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Questionario HSE</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Nuovo questionario da compilare</h2>
        <p>Le è stato assegnato il questionario <strong>%s</strong> per il fornitore <strong>%s</strong>.</p>
        <p>Per compilarlo, clicchi sul pulsante qui sotto:</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Compila il questionario</a>
        </div>
        <p>Se il pulsante non funziona, copi e incolli il seguente link nel browser:</p>
        <p style="word-break: break-all; color: #4a90e2;">%s</p>
        <p>Il link è personale e può essere utilizzato una sola volta per l'invio.</p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">Questa è una email automatica. Si prega di non rispondere.</p>
    </div>
</body>
</html>
`, questionnaireTitle, supplierName, intakeURL, intakeURL)

	return s.sendEmail(to, subject, body)
}

// SendExpiryReminder sends a document expiry reminder to a supplier contact.
// daysLeft 0 means the document expires today or is already expired.
func (s *Service) SendExpiryReminder(to, supplierName, documentName string, expiresAt time.Time, daysLeft int) error {
	var subject, urgency, urgencyColor string
	switch {
	case daysLeft <= 0:
		subject = fmt.Sprintf("SCADUTO: documento '%s'", documentName)
		urgency = "Il documento è scaduto."
		urgencyColor = "#f44336"
	case daysLeft <= 7:
		subject = fmt.Sprintf("Urgente: documento '%s' in scadenza tra %d giorni", documentName, daysLeft)
		urgency = fmt.Sprintf("Il documento scade tra %d giorni.", daysLeft)
		urgencyColor = "#ff9800"
	default:
		subject = fmt.Sprintf("Promemoria: documento '%s' in scadenza tra %d giorni", documentName, daysLeft)
		urgency = fmt.Sprintf("Il documento scade tra %d giorni.", daysLeft)
		urgencyColor = "#ffc107"
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Scadenza documento</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: %s;">Scadenza documento</h2>
        <p>Gentile %s,</p>
        <p>%s</p>

        <div style="background-color: #fff3cd; border-left: 4px solid %s; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Documento:</strong> %s</p>
            <p style="margin: 5px 0;"><strong>Data di scadenza:</strong> %s</p>
        </div>

        <p>La invitiamo a caricare il documento aggiornato il prima possibile. In assenza di aggiornamento la posizione del fornitore potrà essere sospesa.</p>

        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Vai al portale fornitori</a>
        </div>

        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">Questa è una email automatica. Si prega di non rispondere.</p>
    </div>
</body>
</html>
`, urgencyColor, supplierName, urgency, urgencyColor, documentName, expiresAt.Format("02/01/2006"), s.config.PortalURL)

	return s.sendEmail(to, subject, body)
}

// SendSuspensionNotice informs a supplier contact that the supplier has been
// suspended for expired documentation
func (s *Service) SendSuspensionNotice(to, supplierName string, expiredDocuments []string) error {
	subject := fmt.Sprintf("Sospensione qualifica fornitore: %s", supplierName)

	docsHTML := ""
	for _, doc := range expiredDocuments {
		docsHTML += fmt.Sprintf("<li>%s</li>", doc)
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Sospensione fornitore</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #f44336;">Sospensione della qualifica</h2>
        <p>Gentile %s,</p>
        <p>La qualifica del fornitore è stata <strong>sospesa</strong> a causa della seguente documentazione scaduta e non rinnovata:</p>

        <ul style="background-color: #f8f9fa; padding: 15px 15px 15px 35px; border-left: 3px solid #f44336;">
            %s
        </ul>

        <p>Per riattivare la qualifica è necessario caricare la documentazione aggiornata tramite il portale fornitori.</p>

        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Vai al portale fornitori</a>
        </div>

        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">Questa è una email automatica. Si prega di non rispondere.</p>
    </div>
</body>
</html>
`, supplierName, docsHTML, s.config.PortalURL)

	return s.sendEmail(to, subject, body)
}

// SendSuspensionAlert notifies an internal admin of an automatic suspension
func (s *Service) SendSuspensionAlert(to, adminName, supplierName string, expiredDocuments []string, suspendedAt time.Time) error {
	subject := fmt.Sprintf("Fornitore sospeso automaticamente: %s", supplierName)

	docsHTML := ""
	for _, doc := range expiredDocuments {
		docsHTML += fmt.Sprintf("<li>%s</li>", doc)
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Sospensione automatica</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #ff9800;">Sospensione automatica fornitore</h2>
        <p>Ciao %s,</p>
        <p>Il fornitore <strong>%s</strong> è stato sospeso automaticamente in data %s per documentazione scaduta oltre il periodo di tolleranza:</p>

        <ul style="background-color: #f8f9fa; padding: 15px 15px 15px 35px; border-left: 3px solid #ff9800;">
            %s
        </ul>

        <p>Il fornitore è stato informato via email. La riattivazione richiede la verifica della nuova documentazione.</p>

        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">Questa è una notifica automatica del sistema di qualifica fornitori.</p>
    </div>
</body>
</html>
`, adminName, supplierName, suspendedAt.Format("02/01/2006"), docsHTML)

	return s.sendEmail(to, subject, body)
}

// SendCompletionNotification informs the assignment creator that the
// questionnaire has been submitted and scored
func (s *Service) SendCompletionNotification(to, supplierName, questionnaireTitle string, finalScore float64, ratingLabel, ratingColor string) error {
	subject := fmt.Sprintf("Questionario completato: %s", supplierName)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Questionario completato</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Questionario completato</h2>
        <p>Il questionario <strong>%s</strong> per il fornitore <strong>%s</strong> è stato compilato.</p>

        <div style="background-color: #f8f9fa; border-left: 4px solid %s; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Punteggio finale:</strong> %.1f / 100</p>
            <p style="margin: 5px 0;"><strong>Valutazione:</strong>
                <span style="background-color: %s; color: white; padding: 4px 8px; border-radius: 3px;">%s</span>
            </p>
        </div>

        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">Questa è una email automatica. Si prega di non rispondere.</p>
    </div>
</body>
</html>
`, questionnaireTitle, supplierName, ratingColor, finalScore, ratingColor, ratingLabel)

	return s.sendEmail(to, subject, body)
}

// sendEmail sends an email using SMTP
func (s *Service) sendEmail(to, subject, body string) error {
	// Create the email message
	headers := make(map[string]string)
	headers["From"] = s.config.SMTPFrom
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	// Build the message
	var message bytes.Buffer
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	// Connect to SMTP server
	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.Debug("Attempting to connect to SMTP server",
		"address", addr,
		"host", s.config.SMTPHost,
		"port", s.config.SMTPPort,
	)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		slog.Error("Failed to connect to SMTP server",
			"address", addr,
			"error", err,
		)
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		err := conn.Close()
		if err != nil {
			slog.Error("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		slog.Error("Failed to create SMTP client", "error", err)
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		err := client.Close()
		if err != nil {
			slog.Error("Failed to close SMTP client", "error", err)
		}
	}(client)

	// Authenticate only if credentials are provided and not empty
	// For development (e.g., Mailpit), no authentication is needed
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		// Try to authenticate, but don't fail if it's not supported (e.g., Mailpit)
		_ = client.Auth(auth)
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		slog.Error("Failed to set sender",
			"from", s.config.SMTPFrom,
			"error", err,
		)
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		slog.Error("Failed to set recipient",
			"to", to,
			"error", err,
		)
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		slog.Error("Failed to initiate data transfer", "error", err)
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	defer func(wc io.WriteCloser) {
		err := wc.Close()
		if err != nil {
			slog.Error("Failed to close write closer", "error", err)
		}
	}(wc)

	if _, err := wc.Write(message.Bytes()); err != nil {
		slog.Error("Failed to write message", "error", err)
		return fmt.Errorf("failed to write message: %w", err)
	}

	slog.Info("Email sent successfully", "to", to)

	return nil
}
