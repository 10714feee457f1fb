package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("user.name+tag@sub.example.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("user@"))
	assert.False(t, ValidateEmail("@example.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Correct123"))
	assert.False(t, ValidatePassword("short1A"))
	assert.False(t, ValidatePassword("alllowercase1"))
	assert.False(t, ValidatePassword("ALLUPPERCASE1"))
	assert.False(t, ValidatePassword("NoDigitsHere"))
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "alice", NormalizeIdentifier("  Alice "))
	assert.Equal(t, "user@example.com", NormalizeIdentifier("User@Example.COM"))
	assert.Equal(t, "", NormalizeIdentifier("   "))
}
