package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCleanAuthMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "provider prefix and code",
			input: "Firebase: Error auth/invalid-credential (wrong password).",
			want:  "Error invalid-credential wrong password.",
		},
		{
			name:  "plain message untouched",
			input: "Invalid email or password",
			want:  "Invalid email or password",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, cleanAuthMessage(test.input))
		})
	}
}

func TestLogin_UnknownEmailIsGeneric(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := `{"email": "nobody@example.com", "password": "secret123"}`
	ctx, recorder := newTestContext(t, http.MethodPost, body, nil, nil)

	Login(ctx)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid email or password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount_RemovesTheRowOutright(t *testing.T) {
	// A soft delete would leave the email held by a dead row and make the
	// address unregisterable, so the handler must issue a hard DELETE and let
	// the database cascades clean up the user's records.
	mock := setupTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash"}).
		AddRow(3, "applicant@example.com", string(hash))

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"password": "secret123"}`
	ctx, recorder := newTestContext(t, http.MethodDelete, body, nil, applicantUser())

	DeleteAccount(ctx)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPassword_UnknownEmailStaysQuiet(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := `{"email": "nobody@example.com"}`
	ctx, recorder := newTestContext(t, http.MethodPost, body, nil, nil)

	ForgotPassword(ctx)

	// The response must not reveal whether the account exists
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
