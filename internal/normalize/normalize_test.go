package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already folded", "vip", "vip"},
		{"upper case", "VIP", "vip"},
		{"surrounding whitespace", "  VIP \t", "vip"},
		{"inner whitespace kept", "Very Important", "very important"},
		{"email", "John.Doe@Example.COM", "john.doe@example.com"},
		{"sharp s folds", "Straße", "strasse"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.input))
		})
	}
}

func TestKey_VariantsAgree(t *testing.T) {
	variants := []string{" VIP ", "vip", "VIP", "Vip", "\tvIp\n"}
	for _, v := range variants {
		assert.Equal(t, Key("vip"), Key(v), "variant %q", v)
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "Jane Doe", Text("  Jane Doe  "))
	// e followed by a combining acute accent composes to a single rune.
	assert.Equal(t, "café", Text("café"))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" a "))
}
