package mailer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go-openclaw-cv-sender/internal/models"

	"github.com/emersion/go-message/mail"
)

const defaultAttachmentType = "application/octet-stream"

// Compose builds a message. Only presence of from and to is checked,
// address syntax is left to the submission server.
func Compose(from, to, subject, bodyText, bodyHTML string, attachment *models.Attachment) (*models.OutboundMessage, error) {
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("sender address is required")
	}
	if strings.TrimSpace(to) == "" {
		return nil, errors.New("recipient address is required")
	}
	return &models.OutboundMessage{
		From:       from,
		To:         to,
		Subject:    subject,
		BodyText:   bodyText,
		BodyHTML:   bodyHTML,
		Attachment: attachment,
	}, nil
}

// Render writes msg as a MIME message: multipart/mixed holding a
// multipart/alternative text part and the optional attachment.
func Render(w io.Writer, msg *models.OutboundMessage, now time.Time) error {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(msg.Subject)
	setAddress(&h, "From", msg.From)
	setAddress(&h, "To", msg.To)
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("failed to generate message id: %w", err)
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("failed to create mail writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	if err := writeInline(tw, "text/plain", msg.BodyText); err != nil {
		return err
	}
	if msg.BodyHTML != "" {
		if err := writeInline(tw, "text/html", msg.BodyHTML); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}

	if a := msg.Attachment; a != nil && len(a.Content) > 0 && a.Filename != "" {
		mimeType := a.MimeType
		if mimeType == "" {
			mimeType = defaultAttachmentType
		}
		var ah mail.AttachmentHeader
		ah.SetContentType(mimeType, nil)
		ah.SetFilename(a.Filename)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := aw.Write(a.Content); err != nil {
			return err
		}
		if err := aw.Close(); err != nil {
			return err
		}
	}

	return mw.Close()
}

func writeInline(tw *mail.InlineWriter, contentType, body string) error {
	var th mail.InlineHeader
	th.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(th)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return err
	}
	return pw.Close()
}

// setAddress falls back to the raw value when it does not parse
func setAddress(h *mail.Header, key, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		h.Set(key, value)
		return
	}
	h.SetAddressList(key, []*mail.Address{addr})
}

// envelopeAddress extracts the bare address used for MAIL FROM / RCPT TO
func envelopeAddress(value string) string {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return addr.Address
}
