package service

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/mailx"
)

const (
	subjectConfirmation = "Confirm your email"
	subjectRecovery     = "Password recovery"
)

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(
		`<h1>Thank you for your registration</h1>
<p>To finish registration please follow the link below:
  <a href="{{.Link}}">complete registration</a>
</p>`))

	recoveryTmpl = template.Must(template.New("recovery").Parse(
		`<h1>Password recovery</h1>
<p>To finish password recovery please follow the link below:
  <a href="{{.Link}}">recovery password</a>
</p>`))
)

// link builds publicURL/path?param=code.
func link(publicURL, path, param, code string) string {
	q := url.Values{param: {code}}
	return strings.TrimRight(publicURL, "/") + path + "?" + q.Encode()
}

func render(t *template.Template, href string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Link string }{href}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func confirmationMessage(publicURL, to, code string) (mailx.Message, error) {
	body, err := render(confirmationTmpl, link(publicURL, "/confirm-email", "code", code))
	if err != nil {
		return mailx.Message{}, err
	}
	return mailx.Message{To: to, Subject: subjectConfirmation, HTML: body}, nil
}

func recoveryMessage(publicURL, to, code string) (mailx.Message, error) {
	body, err := render(recoveryTmpl, link(publicURL, "/password-recovery", "recoveryCode", code))
	if err != nil {
		return mailx.Message{}, err
	}
	return mailx.Message{To: to, Subject: subjectRecovery, HTML: body}, nil
}
