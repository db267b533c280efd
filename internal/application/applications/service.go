package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slackvite/internal/application/emails"
	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ActionReject is the decision value that rejects; any other value approves.
const ActionReject = "reject"

var (
	ErrApplicationNotFound = errors.New("Application not found")
	ErrInvalidTransition   = errors.New("Invalid application state transition")
)

// Notifier posts workflow events to the admin channel and invites applicants.
type Notifier interface {
	ApplicationReceived(ctx context.Context, app *domain.Application, team *slack.Team) error
	ApplicationRejected(ctx context.Context, app *domain.Application, team *slack.Team) error
	ApplicationApproved(ctx context.Context, app *domain.Application, team *slack.Team) error
	Invite(ctx context.Context, app *domain.Application, team *slack.Team) error
}

// Mailer renders and sends a named email template; it is a no-op when email is off.
type Mailer interface {
	Send(ctx context.Context, to, toName, subject, template string, data interface{}) error
}

// MailData is the context bound into every email template.
type MailData struct {
	Application      *domain.Application
	Team             *slack.Team
	CodeOfConductURL string
}

// Service owns the join-request workflow.
type Service struct {
	DB               *gorm.DB
	Notifier         Notifier
	Mailer           Mailer
	CodeOfConductURL string
}

// SubmitInput is the public form.
type SubmitInput struct {
	Email  string
	Name   string
	Reason string
}

// Submit stores a new application and notifies the admin channel in one transaction.
// A duplicate email or name fails before anything is posted, and a failed post leaves
// no row behind so the applicant can resubmit.
func (s *Service) Submit(ctx context.Context, in SubmitInput, team *slack.Team) (*domain.Application, error) {
	app := &domain.Application{
		Email:  strings.TrimSpace(in.Email),
		Name:   strings.TrimSpace(in.Name),
		Reason: in.Reason,
		State:  domain.StateNew,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		return s.Notifier.ApplicationReceived(ctx, app, team)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("application_id", app.ID).Str("email", app.Email).Msg("application submitted")
	return app, nil
}

// DecideInput is an admin decision on one application.
type DecideInput struct {
	ID     uint
	Action string
}

// Decide records an admin decision and runs the workflow. Only NEW applications can be
// decided; anything else is left alone and reported back as already processed. The
// decision, the member row for an approval and the move to the mailed state commit
// together, and the outbound calls run only after that commit.
func (s *Service) Decide(ctx context.Context, in DecideInput, team *slack.Team) (string, error) {
	var app domain.Application
	next := domain.StateApproved
	if in.Action == ActionReject {
		next = domain.StateRejected
	}
	stale := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, in.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}
		if app.State != domain.StateNew {
			stale = true
			return nil
		}

		moved, err := compareAndSetState(tx, &app, next)
		if err != nil {
			return err
		}
		if !moved {
			stale = true
			return nil
		}
		if next == domain.StateApproved {
			member := &domain.Member{Active: true, ApplicationID: &app.ID}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
			log.Info().Uint("application_id", app.ID).Uint("member_id", member.ID).Msg("member provisioned")
		}
		moved, err = markMailed(tx, &app)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: application %d changed during decision", ErrInvalidTransition, app.ID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if stale {
		return fmt.Sprintf("Application from %s was already processed.", app.Email), nil
	}
	return s.announce(ctx, &app, next, team)
}

// Process performs the side effects for the application's current state and returns a
// notice for the user, if any.
//
// For REJECTED and APPROVED the mailed state is persisted before any outbound call, so an
// application is never notified twice. A chat or mail failure after that point is not
// retried and the state is not rolled back: those side effects are lost.
func (s *Service) Process(ctx context.Context, app *domain.Application, team *slack.Team) (string, error) {
	switch app.State {
	case domain.StateNew:
		return "", s.Notifier.ApplicationReceived(ctx, app, team)

	case domain.StateRejected, domain.StateApproved:
		decided := app.State
		moved, err := markMailed(s.DB.WithContext(ctx), app)
		if err != nil || !moved {
			return "", err
		}
		return s.announce(ctx, app, decided, team)
	}
	return "", nil
}

// announce runs the outbound side effects of a decision that is already stored in its
// mailed state.
func (s *Service) announce(ctx context.Context, app *domain.Application, decided domain.State, team *slack.Team) (string, error) {
	if decided == domain.StateRejected {
		if err := s.Notifier.ApplicationRejected(ctx, app, team); err != nil {
			return "", err
		}
		subject := fmt.Sprintf("Your application to join %s was rejected", team.Name)
		if err := s.sendEmail(ctx, app, team, subject, emails.TemplateRejected); err != nil {
			return "", err
		}
		return fmt.Sprintf("Application from %s rejected.", app.Email), nil
	}

	if err := s.Notifier.Invite(ctx, app, team); err != nil {
		if slack.IsAlreadyInvited(err) {
			log.Info().Uint("application_id", app.ID).Msg("applicant already invited")
			return "Slack says they're already invited.", nil
		}
		return "", err
	}
	if err := s.Notifier.ApplicationApproved(ctx, app, team); err != nil {
		return "", err
	}
	if err := s.sendEmail(ctx, app, team, fmt.Sprintf("Welcome to %s!", team.Name), emails.TemplateApproved); err != nil {
		return "", err
	}
	return fmt.Sprintf("Application from %s approved!", app.Email), nil
}

// List returns applications in exactly the given state, oldest first.
func (s *Service) List(ctx context.Context, state domain.State) ([]domain.Application, error) {
	var apps []domain.Application
	if err := s.DB.WithContext(ctx).Where("state = ?", state).Order("created_at ASC, id ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *Service) sendEmail(ctx context.Context, app *domain.Application, team *slack.Team, subject, template string) error {
	if s.Mailer == nil {
		return nil
	}
	return s.Mailer.Send(ctx, app.Email, app.Name, subject, template, MailData{
		Application:      app,
		Team:             team,
		CodeOfConductURL: s.CodeOfConductURL,
	})
}

// markMailed moves a decided application to its mailed state.
func markMailed(db *gorm.DB, app *domain.Application) (bool, error) {
	switch app.State {
	case domain.StateRejected:
		return compareAndSetState(db, app, domain.StateRejectedMailed)
	case domain.StateApproved:
		return compareAndSetState(db, app, domain.StateApprovedMailed)
	}
	return false, nil
}

// compareAndSetState moves app to next only if the stored row still holds app.State.
// It reports false when another request got there first.
func compareAndSetState(db *gorm.DB, app *domain.Application, next domain.State) (bool, error) {
	if !domain.CanTransition(app.State, next) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.State, next)
	}
	res := db.Model(&domain.Application{}).
		Where("id = ? AND state = ?", app.ID, app.State).
		Update("state", next)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	log.Info().Uint("application_id", app.ID).Str("from", string(app.State)).Str("to", string(next)).Msg("application state changed")
	app.State = next
	return true, nil
}
