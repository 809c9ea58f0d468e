package services

import (
	"testing"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContactService(t *testing.T) (*ContactService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	return NewContactService(database.NewContactRepository(db), validator.New()), mock
}

func TestContactService_Submit(t *testing.T) {
	t.Run("Anonymous Sender", func(t *testing.T) {
		svc, mock := newContactService(t)
		mock.ExpectExec(`INSERT INTO contacts`).
			WithArgs(sqlmock.AnyArg(), "Ada", "ada@campus.edu", "Heating", "Room is cold", nil, "new", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		contact, err := svc.Submit(ContactInput{
			Name:    " Ada ",
			Email:   "Ada@Campus.EDU",
			Subject: "Heating",
			Message: "Room is cold ",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, models.ContactStatusNew, contact.Status)
		assert.Nil(t, contact.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Fields", func(t *testing.T) {
		svc, mock := newContactService(t)
		_, err := svc.Submit(ContactInput{Name: "Ada", Email: "not-an-email"}, nil)
		assertKind(t, err, KindValidation, "Invalid or missing fields: email, message, subject")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContactService_Admin(t *testing.T) {
	t.Run("List Requires Admin", func(t *testing.T) {
		svc, _ := newContactService(t)
		_, err := svc.List(warden(), nil)
		assertKind(t, err, KindAuthorization, "Admin access required")
	})

	t.Run("List By Status", func(t *testing.T) {
		svc, mock := newContactService(t)
		status := models.ContactStatusReplied
		mock.ExpectQuery(`FROM contacts WHERE status = \$1 ORDER BY created_at DESC`).
			WithArgs("replied").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "message", "user_id", "status", "created_at"}).
				AddRow(uuid.NewString(), "Ada", "ada@campus.edu", "Heating", "Cold", nil, "replied", fixedNow))

		contacts, err := svc.List(admin(), &status)
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, models.ContactStatusReplied, contacts[0].Status)
	})

	t.Run("Update Missing Message", func(t *testing.T) {
		svc, mock := newContactService(t)
		mock.ExpectExec(`UPDATE contacts SET status`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.UpdateStatus(admin(), uuid.New(), models.ContactStatusResolved)
		assertKind(t, err, KindNotFound, "Contact message not found")
	})

	t.Run("Update Unknown Status", func(t *testing.T) {
		svc, _ := newContactService(t)
		err := svc.UpdateStatus(admin(), uuid.New(), models.ContactStatus("spam"))
		assertKind(t, err, KindValidation, "Invalid status")
	})
}
