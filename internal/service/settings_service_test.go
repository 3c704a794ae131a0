package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type templateRepoStub struct {
	byCategory map[models.NotificationEvent]*models.EmailTemplate
}

func (s *templateRepoStub) Upsert(_ context.Context, tpl *models.EmailTemplate) error {
	if s.byCategory == nil {
		s.byCategory = map[models.NotificationEvent]*models.EmailTemplate{}
	}
	tpl.ID = "tpl-" + string(tpl.Category)
	s.byCategory[tpl.Category] = tpl
	return nil
}

func (s *templateRepoStub) FindByCategory(_ context.Context, event models.NotificationEvent) (*models.EmailTemplate, error) {
	if tpl, ok := s.byCategory[event]; ok {
		return tpl, nil
	}
	return nil, sql.ErrNoRows
}

func (s *templateRepoStub) FindByID(_ context.Context, id string) (*models.EmailTemplate, error) {
	for _, tpl := range s.byCategory {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *templateRepoStub) List(context.Context) ([]models.EmailTemplate, error) {
	out := make([]models.EmailTemplate, 0, len(s.byCategory))
	for _, tpl := range s.byCategory {
		out = append(out, *tpl)
	}
	return out, nil
}

func TestTemplateServiceUpsert(t *testing.T) {
	repo := &templateRepoStub{}
	svc := NewTemplateService(repo, nil, nil)
	ctx := context.Background()

	tpl, err := svc.Upsert(ctx, SaveTemplateRequest{
		TemplateName: "Reminder", TemplateFor: "reminder", Subject: "Deck {{courseCode}}", HTML: "<b>{{evaluatorName}}</b>",
	})
	require.NoError(t, err)
	require.Equal(t, models.EventReminder, tpl.Category)

	got, err := svc.GetByCategory(ctx, models.EventReminder)
	require.NoError(t, err)
	require.Equal(t, tpl.ID, got.ID)

	_, err = svc.Get(ctx, "missing")
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = svc.Upsert(ctx, SaveTemplateRequest{TemplateName: "x", TemplateFor: "BIRTHDAY", Subject: "s", HTML: "h"})
	requireCode(t, err, appErrors.ErrValidation)

	_, err = svc.Upsert(ctx, SaveTemplateRequest{TemplateName: "x", TemplateFor: "ASSIGNED", Subject: "{{#if}}", HTML: "h"})
	requireCode(t, err, appErrors.ErrValidation)
}

type smtpRepoStub struct {
	settings *models.SMTPSettings
	err      error
}

func (s *smtpRepoStub) Get(context.Context) (*models.SMTPSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.settings == nil {
		return nil, sql.ErrNoRows
	}
	return s.settings, nil
}

func (s *smtpRepoStub) Upsert(_ context.Context, settings *models.SMTPSettings) error {
	s.settings = settings
	return nil
}

func TestSMTPServiceProvidesMailSettings(t *testing.T) {
	repo := &smtpRepoStub{}
	svc := NewSMTPService(repo, "Exam Cell", nil, nil)
	ctx := context.Background()

	_, err := svc.MailSettings(ctx)
	require.ErrorIs(t, err, ErrMailNotConfigured)
	_, err = svc.Get(ctx)
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = svc.Upsert(ctx, SaveSMTPRequest{EmailAddress: "cell@example.edu", EmailPassword: "pw", SMTPHost: "smtp.example.edu", SMTPPort: 465, SMTPSecure: true})
	require.NoError(t, err)

	settings, err := svc.MailSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, "smtp.example.edu", settings.Host)
	require.Equal(t, "cell@example.edu", settings.Username)
	require.Equal(t, "Exam Cell", settings.FromName)
	require.True(t, settings.Secure)

	_, err = svc.Upsert(ctx, SaveSMTPRequest{EmailAddress: "not-an-email", EmailPassword: "pw", SMTPHost: "smtp", SMTPPort: 25})
	requireCode(t, err, appErrors.ErrValidation)

	repo.err = errors.New("db down")
	_, err = svc.MailSettings(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMailNotConfigured)
}

type schoolRepoStub struct {
	schools []models.School
}

func (s *schoolRepoStub) Create(_ context.Context, school *models.School) error {
	school.ID = school.SchoolName
	s.schools = append(s.schools, *school)
	return nil
}

func (s *schoolRepoStub) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, sc := range s.schools {
		if sc.SchoolName == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *schoolRepoStub) FindByID(_ context.Context, id string) (*models.School, error) {
	for _, sc := range s.schools {
		if sc.ID == id {
			cp := sc
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *schoolRepoStub) List(context.Context) ([]models.School, error) {
	return s.schools, nil
}

func TestSchoolService(t *testing.T) {
	svc := NewSchoolService(&schoolRepoStub{}, nil)
	ctx := context.Background()

	school, err := svc.Create(ctx, " School of Engineering ")
	require.NoError(t, err)
	require.Equal(t, "School of Engineering", school.SchoolName)

	_, err = svc.Create(ctx, "School of Engineering")
	requireCode(t, err, appErrors.ErrConflict)
	_, err = svc.Create(ctx, "")
	requireCode(t, err, appErrors.ErrValidation)

	got, err := svc.Get(ctx, school.ID)
	require.NoError(t, err)
	require.Equal(t, school.SchoolName, got.SchoolName)
	_, err = svc.Get(ctx, "nope")
	requireCode(t, err, appErrors.ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
