package emailsvc

import (
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
)

// SentMessages holds every message delivered by the console mock.
var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// base64 lines are wrapped at this width (RFC 2045)
const lineWidth = 76

type consoleService struct {
	from          mail.Address
	subjPrefix    string
	disableOutput bool
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService prints messages to the standard logger instead of sending them.
func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		from:       mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail},
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.deliver(msg)
	}
}

func (svc consoleService) deliver(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		log.Printf("%+v", errors.Wrap(err, "rendering email"))
		return
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		return
	}

	body := new(strings.Builder)
	if err := svc.write(body, *msg); err != nil {
		log.Printf("%+v", errors.Wrap(err, "writing email"))
		return
	}
	if !svc.disableOutput {
		log.Println(body.String())
	}

	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

// write renders msg as a MIME message: text (and html) alternatives, mixed with the attachments.
func (svc consoleService) write(w io.Writer, msg core.EmailMessage) error {
	mixed := multipart.NewWriter(w)
	header := []string{
		"From: " + svc.from.String(),
		"To: " + joinAddresses(msg.To),
		"Cc: " + joinAddresses(msg.Cc),
		"Bcc: " + joinAddresses(msg.Bcc),
		"Subject: " + mime.QEncoding.Encode("utf-8", svc.subjPrefix+msg.Subject),
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=" + mixed.Boundary(),
	}
	if _, err := fmt.Fprint(w, strings.Join(header, "\r\n")+"\r\n\r\n"); err != nil {
		return err
	}

	alt := new(strings.Builder)
	altW := multipart.NewWriter(alt)
	parts := []struct{ ct, content string }{{"text/plain", msg.TextContent}}
	if msg.HTMLContent != "" {
		parts = append(parts, struct{ ct, content string }{"text/html", msg.HTMLContent})
	}
	for _, p := range parts {
		pw, err := altW.CreatePart(textproto.MIMEHeader{"Content-Type": {p.ct + "; charset=utf-8"}})
		if err != nil {
			return errors.Wrap(err, "creating "+p.ct+" part")
		}
		if _, err := io.WriteString(pw, p.content+"\r\n"); err != nil {
			return err
		}
	}
	if err := altW.Close(); err != nil {
		return err
	}

	pw, err := mixed.CreatePart(textproto.MIMEHeader{"Content-Type": {"multipart/alternative; boundary=" + altW.Boundary()}})
	if err != nil {
		return errors.Wrap(err, "creating multipart/alternative part")
	}
	if _, err := io.WriteString(pw, alt.String()); err != nil {
		return err
	}

	for _, at := range msg.Attachments {
		pw, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {at.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": at.Filename})},
		})
		if err != nil {
			return errors.Wrap(err, "creating "+at.ContentType+" part")
		}
		if err := writeWrapped(pw, at.Content.String()); err != nil {
			return err
		}
	}
	return mixed.Close()
}

func writeWrapped(w io.Writer, s string) error {
	for len(s) > 0 {
		n := lineWidth
		if len(s) < n {
			n = len(s)
		}
		if _, err := io.WriteString(w, s[:n]+"\r\n"); err != nil {
			return err
		}
		s = s[n:]
	}
	return nil
}

func joinAddresses(addrs []mail.Address) string {
	list := make([]string, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, a.String())
	}
	return strings.Join(list, ", ")
}

type consoleServiceMock struct {
	consoleService
}

// NewConsoleServiceMock delivers synchronously and without output.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	svc := NewConsoleService(conf).(*consoleService)
	svc.disableOutput = true
	return &consoleServiceMock{consoleService: *svc}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.deliver(msg)
	}
}
