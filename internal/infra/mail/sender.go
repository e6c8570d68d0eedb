package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

var leadAssignedTmpl = template.Must(template.New("lead_assigned").Parse(`
<p>Hi {{.UserName}},</p>
<p>The lead <strong>{{.LeadName}}</strong> has been assigned to you.
Please review the timeline and plan the next outreach step.</p>
`))

type leadAssignedData struct {
	UserName string
	LeadName string
}

func (s *EmailSender) SendLeadAssigned(to, userName, leadName string) error {
	var body bytes.Buffer
	err := leadAssignedTmpl.Execute(&body, leadAssignedData{UserName: userName, LeadName: leadName})
	if err != nil {
		return fmt.Errorf("render assignment mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New lead assigned: %s", leadName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send assignment mail: %w", err)
	}
	return nil
}
