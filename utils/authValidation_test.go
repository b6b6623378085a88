package utils

import (
	"OcuCare/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUserData(t *testing.T) {
	valid := models.UserProfile{ID: "p1", Email: "p1@example.com", Password: "longenough", Role: models.RolePatient}
	assert.NoError(t, ValidateUserData(valid))

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, ValidateUserData(badEmail))

	shortPassword := valid
	shortPassword.Password = "short"
	assert.Error(t, ValidateUserData(shortPassword))

	badRole := valid
	badRole.Role = "superuser"
	assert.Error(t, ValidateUserData(badRole))
}

func TestValidateResultData(t *testing.T) {
	for _, label := range models.ClassificationLabels {
		assert.NoError(t, ValidateResultData(label, 0.5), label)
	}

	assert.Error(t, ValidateResultData("Conjunctivitis", 0.5), "labels outside the vocabulary are rejected")
	assert.Error(t, ValidateResultData(models.LabelNormal, -0.1))
	assert.Error(t, ValidateResultData(models.LabelNormal, 1.01))
	assert.NoError(t, ValidateResultData(models.LabelNormal, 0))
	assert.NoError(t, ValidateResultData(models.LabelNormal, 1))
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("hello doctor"))
	assert.Error(t, ValidateMessageText(""))

	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateMessageText(string(long)))
}
