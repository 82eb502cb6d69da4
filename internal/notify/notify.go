// Package notify delivers submission outcomes to wherever the host wants
// them: the log, an operator mailbox, or both.
package notify

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/thisisjab/signup-go/internal/form"
	"github.com/thisisjab/signup-go/internal/mailer"
	"golang.org/x/crypto/bcrypt"
)

const signupTemplate = "signup_accepted.tmpl"

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

type Notifier interface {
	Notify(ctx context.Context, formID uuid.UUID, outcome form.Outcome) error
}

// Multi fans an outcome out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, formID uuid.UUID, outcome form.Outcome) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, formID, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes outcomes to a structured logger. Passwords are never logged.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, formID uuid.UUID, outcome form.Outcome) error {
	if !outcome.IsAccepted() || outcome.Data == nil {
		n.Logger.InfoContext(ctx, "signup rejected", "form_id", formID, "message", outcome.Message)
		return nil
	}

	n.Logger.InfoContext(ctx, "signup accepted",
		"form_id", formID,
		"name", outcome.Data.Name,
		"email", outcome.Data.Email,
	)
	return nil
}

type sender interface {
	Send(ctx context.Context, recipient, templateFile string, data any) error
}

// MailNotifier mails accepted signups to a fixed recipient. The password is
// replaced by its bcrypt hash before it reaches the template.
type MailNotifier struct {
	mailer    sender
	recipient string
	cost      int
	now       func() time.Time
}

func NewMailNotifier(m *mailer.Mailer, recipient string) *MailNotifier {
	return &MailNotifier{
		mailer:    m,
		recipient: recipient,
		cost:      12,
		now:       time.Now,
	}
}

type signupMail struct {
	FormID       uuid.UUID
	SubmittedAt  time.Time
	Name         string
	Email        string
	PasswordHash string
}

func (n *MailNotifier) Notify(ctx context.Context, formID uuid.UUID, outcome form.Outcome) error {
	if !outcome.IsAccepted() || outcome.Data == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(outcome.Data.Password), n.cost)
	if err != nil {
		return err
	}

	return n.mailer.Send(ctx, n.recipient, signupTemplate, signupMail{
		FormID:       formID,
		SubmittedAt:  n.now(),
		Name:         outcome.Data.Name,
		Email:        outcome.Data.Email,
		PasswordHash: string(hash),
	})
}

// bcryptInput returns password as bcrypt input. Passwords longer than bcrypt
// allows are replaced by the base64 of their SHA-256 digest, so the hash is
// verified against bcryptInput(password) in that case.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}

	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
