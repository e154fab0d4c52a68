// internal/app/system/notify/templates.go
package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// InviteEmailData holds data for invitation email templates.
type InviteEmailData struct {
	SiteName   string
	GuestName  string
	InviteLink string
	ExpiresIn  string // e.g., "7 dias"
}

// BuildInviteEmail creates an invitation email with HTML and text bodies.
func BuildInviteEmail(data InviteEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Convite para o %s", data.SiteName),
		TextBody: buildInviteText(data),
		HTMLBody: buildInviteHTML(data),
	}
}

func buildInviteText(data InviteEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Olá %s,\n\n", data.GuestName))
	buf.WriteString(fmt.Sprintf("Você foi convidado(a) para criar seu cadastro no %s.\n\n", data.SiteName))
	buf.WriteString("Acesse o link abaixo para concluir o cadastro:\n")
	buf.WriteString(data.InviteLink + "\n\n")
	buf.WriteString(fmt.Sprintf("O link expira em %s.\n\n", data.ExpiresIn))
	buf.WriteString("Se você não esperava este convite, pode ignorar esta mensagem.\n")
	return buf.String()
}

func buildInviteHTML(data InviteEmailData) string {
	tmpl := template.Must(template.New("invite").Parse(inviteHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// UpdateRequestEmailData holds data for the profile-update request email
// sent to the secretariat.
type UpdateRequestEmailData struct {
	SiteName   string
	MemberName string
	Message    string
}

// BuildUpdateRequestEmail creates the update-request notification email.
func BuildUpdateRequestEmail(data UpdateRequestEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("%s solicitou atualização cadastral", data.MemberName),
		TextBody: buildUpdateRequestText(data),
		HTMLBody: buildUpdateRequestHTML(data),
	}
}

func buildUpdateRequestText(data UpdateRequestEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("O membro %s solicitou atualização dos seus dados no %s.\n\n", data.MemberName, data.SiteName))
	if data.Message != "" {
		buf.WriteString("Mensagem do membro:\n")
		buf.WriteString(data.Message + "\n")
	}
	return buf.String()
}

func buildUpdateRequestHTML(data UpdateRequestEmailData) string {
	tmpl := template.Must(template.New("updatereq").Parse(updateRequestHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// PasswordResetEmailData holds data for password reset emails.
type PasswordResetEmailData struct {
	SiteName   string
	MemberName string
	ResetLink  string
}

// BuildPasswordResetEmail creates the password reset email.
func BuildPasswordResetEmail(data PasswordResetEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Redefinição de senha - %s", data.SiteName),
		TextBody: buildPasswordResetText(data),
		HTMLBody: buildPasswordResetHTML(data),
	}
}

func buildPasswordResetText(data PasswordResetEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Olá %s,\n\n", data.MemberName))
	buf.WriteString("Recebemos um pedido para redefinir sua senha.\n\n")
	buf.WriteString("Acesse o link abaixo para criar uma nova senha:\n")
	buf.WriteString(data.ResetLink + "\n\n")
	buf.WriteString("Se você não pediu a redefinição, pode ignorar esta mensagem.\n")
	return buf.String()
}

func buildPasswordResetHTML(data PasswordResetEmailData) string {
	tmpl := template.Must(template.New("pwreset").Parse(passwordResetHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const inviteHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Convite</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #1d4ed8;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Olá {{.GuestName}}, você foi convidado(a) para criar seu cadastro.
              </p>
              <p style="margin: 0 0 24px; text-align: center;">
                <a href="{{.InviteLink}}" style="display: inline-block; background-color: #1d4ed8; color: #ffffff; text-decoration: none; padding: 12px 32px; border-radius: 6px; font-size: 16px; font-weight: 600;">Concluir cadastro</a>
              </p>
              <p style="margin: 0; font-size: 14px; color: #6b7280; text-align: center;">
                O link expira em {{.ExpiresIn}}. Se você não esperava este convite, ignore esta mensagem.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const updateRequestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Atualização cadastral</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                O membro <strong>{{.MemberName}}</strong> solicitou atualização dos seus dados no {{.SiteName}}.
              </p>
              {{if .Message}}
              <p style="margin: 0; font-size: 14px; color: #6b7280; white-space: pre-line;">{{.Message}}</p>
              {{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const passwordResetHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Redefinição de senha</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">
                Olá {{.MemberName}}, recebemos um pedido para redefinir sua senha.
              </p>
              <p style="margin: 0 0 24px; text-align: center;">
                <a href="{{.ResetLink}}" style="display: inline-block; background-color: #1d4ed8; color: #ffffff; text-decoration: none; padding: 12px 32px; border-radius: 6px; font-size: 16px; font-weight: 600;">Redefinir senha</a>
              </p>
              <p style="margin: 0; font-size: 14px; color: #6b7280; text-align: center;">
                Se você não pediu a redefinição, ignore esta mensagem.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
