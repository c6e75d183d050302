package smtp

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/halayachts/hala-api/internal/ports"
)

type sender struct {
	Name  string
	Email string
	Host  string
}

// compose renders msg as an RFC 5322 message with a multipart/alternative body.
func compose(from sender, msg ports.MailMessage, now time.Time) ([]byte, error) {
	text := msg.Text
	if text == "" && msg.HTML != "" {
		text = HTMLToText(msg.HTML)
	}

	var buf bytes.Buffer
	header := []struct{ key, value string }{
		{"From", (&mail.Address{Name: from.Name, Address: from.Email}).String()},
		{"To", (&mail.Address{Address: msg.To}).String()},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDHost(from))},
		{"MIME-Version", "1.0"},
	}
	if strings.TrimSpace(msg.ReplyTo) != "" {
		header = append(header, struct{ key, value string }{"Reply-To", (&mail.Address{Address: msg.ReplyTo}).String()})
	}
	for _, h := range header {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.key, h.value)
	}

	if msg.HTML == "" {
		buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQuotedPrintable(&buf, text); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	for _, part := range []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", text},
		{"text/html; charset=UTF-8", msg.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("create part: %w", err)
		}
		if err := writeQuotedPrintable(w, part.body); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), nil
}

func writeQuotedPrintable(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	return nil
}

func messageIDHost(from sender) string {
	if at := strings.LastIndexByte(from.Email, '@'); at >= 0 && at < len(from.Email)-1 {
		return from.Email[at+1:]
	}
	if from.Host != "" {
		return from.Host
	}
	return "localhost"
}
