package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

func TestEmailTemplateRepositoryUpsertReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmailTemplateRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (category)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_name", "category", "subject", "html", "created_at", "updated_at"}).
			AddRow("existing-id", "Reminder", "REMINDER", "Overdue deck", "<p>{{evaluatorName}}</p>", now.Add(-time.Hour), now))

	tpl := &models.EmailTemplate{TemplateName: "Reminder", Category: models.EventReminder, Subject: "Overdue deck", HTML: "<p>{{evaluatorName}}</p>"}
	require.NoError(t, repo.Upsert(context.Background(), tpl))
	require.Equal(t, "existing-id", tpl.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailTemplateRepositoryFindByCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmailTemplateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM email_templates WHERE category = $1")).
		WithArgs("DROPPED").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCategory(context.Background(), models.EventDropped)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSMTPRepositoryRoundTrip(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSMTPRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO smtp_settings")).WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Upsert(context.Background(), &models.SMTPSettings{EmailAddress: "exams@example.edu", SMTPHost: "smtp.example.edu", SMTPPort: 465, SMTPSecure: true}))

	mock.ExpectQuery(regexp.QuoteMeta("FROM smtp_settings WHERE id = 1")).
		WillReturnRows(sqlmock.NewRows([]string{"email_address", "email_password", "smtp_host", "smtp_port", "smtp_secure", "updated_at"}).
			AddRow("exams@example.edu", "pw", "smtp.example.edu", 465, true, time.Now()))
	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 465, settings.SMTPPort)
	require.True(t, settings.SMTPSecure)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepository(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schools")).
		WithArgs("SOCS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	exists, err := repo.ExistsByName(context.Background(), "SOCS")
	require.NoError(t, err)
	require.False(t, exists)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schools")).WillReturnResult(sqlmock.NewResult(1, 1))
	school := &models.School{SchoolName: "SOCS"}
	require.NoError(t, repo.Create(context.Background(), school))
	require.NotEmpty(t, school.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schools ORDER BY school_name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "school_name", "created_at", "updated_at"}).AddRow(school.ID, "SOCS", time.Now(), time.Now()))
	schools, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, schools, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
