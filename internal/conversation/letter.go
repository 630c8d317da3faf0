package conversation

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Signature closes every cover letter
type Signature struct {
	Name     string
	Phone    string
	Location string
}

type letterData struct {
	Company   string
	Vacancy   string
	Signature Signature
}

const textLetter = `Estimado reclutadores de {{.Company}},

Adjunto mi CV para aplicar al cargo {{.Vacancy}} en {{.Company}}.

Saludos cordiales,
{{- with .Signature}}
{{- if .Name}}
{{.Name}}{{end}}
{{- if .Phone}}
Cel: {{.Phone}}{{end}}
{{- if .Location}}
{{.Location}}{{end}}
{{- end}}
`

const htmlLetter = `<html>
  <body>
    <p>Estimado reclutadores de <strong>{{.Company}}</strong>,</p>
    <p>
      Adjunto mi CV para aplicar al cargo
      <b><i>{{.Vacancy}}</i></b> en <b><i>{{.Company}}</i></b>.
    </p>
    <br>
    <p>Saludos cordiales,</p>
    {{- with .Signature}}
    <p>
      {{- if .Name}}
      <b>{{.Name}}</b><br>{{end}}
      {{- if .Phone}}
      Cel: {{.Phone}}<br>{{end}}
      {{- if .Location}}
      {{.Location}}{{end}}
    </p>
    {{- end}}
  </body>
</html>
`

var (
	textLetterTmpl = texttemplate.Must(texttemplate.New("letter.txt").Parse(textLetter))
	htmlLetterTmpl = htmltemplate.Must(htmltemplate.New("letter.html").Parse(htmlLetter))
)

// Subject is the email subject for an application
func Subject(company, vacancy string) string {
	return fmt.Sprintf("Postulación a %s en %s", vacancy, company)
}

// Letter renders the plain text and HTML cover message
func Letter(company, vacancy string, sig Signature) (text, html string, err error) {
	data := letterData{Company: company, Vacancy: vacancy, Signature: sig}

	var tb bytes.Buffer
	if err := textLetterTmpl.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("failed to render text letter: %w", err)
	}
	var hb bytes.Buffer
	if err := htmlLetterTmpl.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("failed to render html letter: %w", err)
	}
	return tb.String(), hb.String(), nil
}
