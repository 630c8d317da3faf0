package mailer

import (
	"bytes"
	"io"
	"testing"
	"time"

	"go-openclaw-cv-sender/internal/models"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_RequiresAddresses(t *testing.T) {
	_, err := Compose("", "recruiter@acme.com", "s", "b", "", nil)
	assert.Error(t, err)

	_, err = Compose("me@example.com", "  ", "s", "b", "", nil)
	assert.Error(t, err)

	msg, err := Compose("me@example.com", "not-an-address", "s", "b", "", nil)
	require.NoError(t, err, "address syntax is the server's concern")
	assert.Equal(t, "not-an-address", msg.To)
}

type renderedPart struct {
	contentType string
	filename    string
	body        string
}

func parseRendered(t *testing.T, raw []byte) (*mail.Reader, []renderedPart) {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	var parts []renderedPart
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			parts = append(parts, renderedPart{contentType: ct, body: string(body)})
		case *mail.AttachmentHeader:
			ct, _, _ := h.ContentType()
			name, _ := h.Filename()
			parts = append(parts, renderedPart{contentType: ct, filename: name, body: string(body)})
		}
	}
	return mr, parts
}

func TestRender_FullMessage(t *testing.T) {
	msg, err := Compose(
		"Jonás <me@example.com>",
		"recruiter@acme.com",
		"Postulación a Backend Engineer en Acme",
		"Adjunto mi CV",
		"<p>Adjunto mi CV</p>",
		&models.Attachment{Filename: "CV.pdf", MimeType: "application/pdf", Content: []byte("%PDF-1.4")},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, msg, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)))

	mr, parts := parseRendered(t, buf.Bytes())

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Postulación a Backend Engineer en Acme", subject)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "me@example.com", from[0].Address)
	assert.Equal(t, "Jonás", from[0].Name)

	id, err := mr.Header.MessageID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, parts, 3)
	assert.Equal(t, renderedPart{contentType: "text/plain", body: "Adjunto mi CV"}, parts[0])
	assert.Equal(t, renderedPart{contentType: "text/html", body: "<p>Adjunto mi CV</p>"}, parts[1])
	assert.Equal(t, renderedPart{contentType: "application/pdf", filename: "CV.pdf", body: "%PDF-1.4"}, parts[2])
}

func TestRender_TextOnlyAndDefaultAttachmentType(t *testing.T) {
	msg, err := Compose("me@example.com", "recruiter@acme.com", "Hola", "cuerpo", "",
		&models.Attachment{Filename: "cv.bin", Content: []byte{1, 2, 3}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, msg, time.Now()))

	_, parts := parseRendered(t, buf.Bytes())
	require.Len(t, parts, 2)
	assert.Equal(t, "text/plain", parts[0].contentType)
	assert.Equal(t, "application/octet-stream", parts[1].contentType)
	assert.Equal(t, "cv.bin", parts[1].filename)
}

func TestEnvelopeAddress(t *testing.T) {
	assert.Equal(t, "me@example.com", envelopeAddress("Jonás <me@example.com>"))
	assert.Equal(t, "me@example.com", envelopeAddress("me@example.com"))
	assert.Equal(t, "garbage", envelopeAddress(" garbage "))
}
