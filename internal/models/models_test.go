package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDRendersAsString(t *testing.T) {
	out, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42"}`, string(out))

	var in struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"7","b":8}`), &in))
	assert.Equal(t, ID(7), in.A)
	assert.Equal(t, ID(8), in.B)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 15 ")
	require.NoError(t, err)
	assert.Equal(t, "15", id.String())

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestAuthor(t *testing.T) {
	anon := AnonymousAuthor()
	_, ok := anon.UserID()
	assert.False(t, ok)
	assert.Nil(t, anon.Column())
	assert.False(t, anon.Is(0))

	a := IdentifiedAuthor(3)
	id, ok := a.UserID()
	assert.True(t, ok)
	assert.Equal(t, ID(3), id)
	assert.True(t, a.Is(3))
	assert.False(t, a.Is(4))
	assert.Equal(t, a, AuthorFromColumn(a.Column()))
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "nick", (&User{Nickname: "nick", Name: "name", Email: "mail@x.io"}).DisplayName())
	assert.Equal(t, "name", (&User{Nickname: " ", Name: "name", Email: "mail@x.io"}).DisplayName())
	assert.Equal(t, "mail", (&User{Email: "mail@x.io"}).DisplayName())
	assert.Equal(t, "", (&User{}).DisplayName())

	var missing *User
	assert.Equal(t, "", missing.DisplayName())
}
