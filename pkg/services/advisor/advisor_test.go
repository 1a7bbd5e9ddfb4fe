package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

func TestNormalizeBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "already bulleted",
			in:   "- Verify X\n- Check Y",
			want: "- Verify X\n- Check Y",
		},
		{
			name: "plain lines gain markers",
			in:   "Verify X\nCheck Y",
			want: "- Verify X\n- Check Y",
		},
		{
			name: "single line",
			in:   "Verify X",
			want: "- Verify X",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBullets(tt.in))
		})
	}
}

func TestPrompt(t *testing.T) {
	prompt := Prompt([]domain.Anomaly{
		{Entry: domain.Entry{Item: "Land", Debit: 500000}},
	})

	assert.Contains(t, prompt, `{items: "Land", debit: 500000.00, credit: 0.00}`)
	assert.Contains(t, prompt, "5-8 concise audit recommendations")
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiSettings{})
	require.Error(t, err)
}
