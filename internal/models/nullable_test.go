package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchFieldPresence(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null,"order_number":3,"allocated_time":15}`), &p))

	assert.True(t, p.Description.Set)
	assert.Nil(t, p.Description.Value)
	assert.False(t, p.ParentID.Set)
	require.NotNil(t, p.OrderNumber)
	assert.Equal(t, 3, *p.OrderNumber)
	require.NotNil(t, p.AllocatedTime.Value)
	assert.Equal(t, 15, *p.AllocatedTime.Value)
	assert.Nil(t, p.Title)
	assert.False(t, p.Empty())
}

func TestTaskPatchEmpty(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"unknown":"ignored"}`), &p))
	assert.True(t, p.Empty())
}

func TestProfileNeverSerializesHash(t *testing.T) {
	b, err := json.Marshal(Profile{ID: "p1", Name: "alice", PasswordHash: "$2a$10$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}
