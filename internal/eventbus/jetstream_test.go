package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStreamName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{QuotesStream.Name, true},
		{"quote_bot-1", true},
		{"", false},
		{"quotes.message", false},
		{"-quotes", false},
		{"quotes-", false},
		{"quotes >", false},
		{"quotes*", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidStreamName(tt.name), "name %q", tt.name)
	}
}
