package email

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/anchorhq/anchor/internal/api/domain"
)

//go:embed templates/*.html
var templates embed.FS

var digestTmpl = template.Must(template.ParseFS(templates, "templates/digest.html"))

// DigestSubject is the subject line for the daily digest email.
const DigestSubject = "Your Anchor Daily Digest"

// RenderDigest renders the daily digest email body for one recipient.
func RenderDigest(d domain.Digest) (string, error) {
	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
