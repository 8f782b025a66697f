package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	u := &User{Username: "admin"}
	require.NoError(t, u.SetPassword("s3cret"))

	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.NotEqual(t, "s3cret", u.Password, "password must be stored hashed")
}

// Directory-managed accounts carry no local hash; they must never match any
// password locally.
func TestCheckPasswordEmptyHash(t *testing.T) {
	u := &User{Username: "siti"}
	assert.False(t, u.CheckPassword(""))
	assert.False(t, u.CheckPassword("anything"))
}

func TestHasRoleAndRoleNames(t *testing.T) {
	u := &User{Roles: []Role{{Name: "uploader"}, {Name: "branch_user"}}}

	assert.True(t, u.HasRole(RoleUploader))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.Equal(t, []string{"uploader", "branch_user"}, u.RoleNames())
}
