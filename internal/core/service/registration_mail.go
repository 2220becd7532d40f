package service

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"github.com/ksalp/portal/internal/core/ports"
)

const confirmationSubject = "Registrierung bei ksalp.ch"

var confirmationPlain = template.Must(template.New("plain").Parse(`Guten Tag, {{.Name}}

Um die Registrierung bei ksalp.ch abzuschliessen, klicken Sie bitte auf den folgenden Link:

{{.Link}}

Der Link ist für {{.Minutes}} Minuten gültig. Falls Sie sich nicht registriert haben, ignorieren Sie diese E-Mail.

Das ksalp.ch Team wünscht Ihnen viel Erfolg beim Lernen.
`))

var confirmationHTML = htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Guten Tag, {{.Name}}</p>
<p>Um die Registrierung bei ksalp.ch abzuschliessen, klicken Sie bitte auf den folgenden Link:</p>
<p><b><a href="{{.Link}}">{{.Link}}</a></b></p>
<p>Der Link ist für {{.Minutes}} Minuten gültig. Falls Sie sich nicht registriert haben, ignorieren Sie diese E-Mail.</p>
<p>Das ksalp.ch Team wünscht Ihnen viel Erfolg beim Lernen.</p>
`))

type confirmationData struct {
	Name    string
	Link    string
	Minutes int
}

func confirmationMessage(to string, data confirmationData) (ports.MailMessage, error) {
	var plain, html bytes.Buffer
	if err := confirmationPlain.Execute(&plain, data); err != nil {
		return ports.MailMessage{}, err
	}
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return ports.MailMessage{}, err
	}
	return ports.MailMessage{
		To:      to,
		Subject: confirmationSubject,
		Plain:   plain.String(),
		HTML:    html.String(),
		Tag:     "registration",
	}, nil
}
