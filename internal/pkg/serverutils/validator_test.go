package serverutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Kind     string `json:"chat_type,omitempty" validate:"omitempty,oneof=symptoms disease"`
	Limit    int    `validate:"max=100"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&signup{Email: "a@b.co", Password: "secret1", Kind: "disease"}))
	})

	t.Run("fields use json names", func(t *testing.T) {
		err := ValidateRequest(&signup{Email: "nope", Password: "abc", Kind: "other", Limit: 500})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		got := map[string]string{}
		for _, f := range verr.Fields {
			got[f.Field] = f.Message
		}
		assert.Equal(t, map[string]string{
			"email":     "must be a valid email",
			"password":  "must be at least 6 characters",
			"chat_type": "must be one of [symptoms disease]",
			"Limit":     "must be at most 100",
		}, got)
	})

	t.Run("required", func(t *testing.T) {
		err := ValidateRequest(&signup{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
		assert.Contains(t, verr.Error(), "email: is required")
	})
}
