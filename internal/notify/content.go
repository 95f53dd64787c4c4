package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var activationTemplate = template.Must(template.New("activation").Parse(`
<p>Bienvenue sur <b>{{.SiteName}}</b></p>
<p>Cliquez sur le lien suivant pour valider votre inscription :</p>
<a href="{{.Link}}">Confirmer mon compte</a>
<br/><br/>
<p>Ce lien est valide pendant {{.Validity}}.</p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<p>Bonjour,</p>
<p>Vous avez demandé à réinitialiser votre mot de passe.</p>
<p>Cliquez sur le lien suivant pour définir un nouveau mot de passe :</p>
<a href="{{.Link}}">Réinitialiser mon mot de passe</a>
<br/><br/>
<p>Ce lien est valable pendant {{.Validity}}.</p>
<p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
`))

const (
	activationSubject = "Confirmation d'inscription"
	resetSubject      = "Réinitialisation de votre mot de passe"
)

type Message struct {
	Subject string
	HTML    string
}

// Content renders the activation and reset mails.
type Content struct {
	siteName      string
	activationTTL time.Duration
	resetTTL      time.Duration
}

func NewContent(siteName string, activationTTL, resetTTL time.Duration) *Content {
	return &Content{
		siteName:      siteName,
		activationTTL: activationTTL,
		resetTTL:      resetTTL,
	}
}

func (c *Content) Activation(link string) (Message, error) {
	return c.render(activationTemplate, activationSubject, link, c.activationTTL)
}

func (c *Content) Reset(link string) (Message, error) {
	return c.render(resetTemplate, resetSubject, link, c.resetTTL)
}

func (c *Content) render(tmpl *template.Template, subject, link string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		SiteName string
		Link     string
		Validity string
	}{
		SiteName: c.siteName,
		Link:     link,
		Validity: humanDuration(ttl),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return Message{Subject: subject, HTML: buf.String()}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "heure")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d/time.Second), "seconde")
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
