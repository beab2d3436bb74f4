package encrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Short1":       false,
		"alllower123":  false,
		"NoDigitsHere": false,
		"Valid1Pass":   true,
	}
	for pw, ok := range cases {
		err := ValidatePasswordStrength(pw)
		if ok {
			assert.NoError(t, err, pw)
		} else {
			assert.ErrorIs(t, err, ErrWeakPassword, pw)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Valid1Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Valid1Pass", hash)

	assert.NoError(t, CheckPassword(hash, "Valid1Pass"))
	assert.ErrorIs(t, CheckPassword(hash, "Wrong1Pass"), ErrPasswordMismatch)
}
