package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string   `json:"username" validate:"required,username"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,pwd"`
	Roles    []string `json:"roles" validate:"omitempty,dive,rolename"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsReportsFieldsByJSONName(t *testing.T) {
	err := newValidator().Struct(signup{Username: "a b", Email: "nope", Password: "short", Roles: []string{"admin"}})

	details := ToDetails(err)
	assert.Equal(t, "may contain only letters, digits, '.', '_' and '-'", details["username"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8 characters long", details["password"])
	assert.Equal(t, "must be in uppercase", details["roles[0]"])
}

func TestToDetailsAcceptsValidPayload(t *testing.T) {
	err := newValidator().Struct(signup{Username: "ana.k", Email: "a@x.io", Password: "longenough", Roles: []string{"ROLE_USER"}})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(err))
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst signup
	err := json.NewDecoder(strings.NewReader("")).Decode(&dst)
	assert.Equal(t, map[string]string{"payload": "empty body"}, ToDetails(err))

	err = json.NewDecoder(strings.NewReader(`{"username":`)).Decode(&dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"username": 12}`), &dst)
	assert.Equal(t, map[string]string{"username": "must be a string"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{bad}`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestPasswordLengthCountsBytes(t *testing.T) {
	v := newValidator()
	base := signup{Username: "ana", Email: "a@x.io"}

	base.Password = strings.Repeat("é", 40)
	details := ToDetails(v.Struct(base))
	assert.Equal(t, "must be at most 72 bytes", details["password"])

	base.Password = strings.Repeat("é", 36)
	assert.NoError(t, v.Struct(base))

	base.Password = strings.Repeat("a", 73)
	assert.Contains(t, ToDetails(v.Struct(base)), "password")
}
