package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:     "condition adds lines",
			args:     []string{"--right", "mobile"},
			contains: []string{"--- conditions: (none)", "+++ conditions: mobile", "+Open the app."},
		},
		{
			name:     "usage history applies to both sides",
			args:     []string{"--right", "mobile", "--used", "view_bill"},
			contains: []string{"prompts are identical"},
		},
		{
			name:        "same conditions",
			args:        []string{"--left", "mobile", "--right", "mobile"},
			contains:    []string{"prompts are identical"},
			notContains: []string{"+++"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newProject(t)
			docs := t.TempDir()
			writeFile(t, docs, "billing.md", billingDoc)

			stdout, stderr, err := execute(t, append([]string{"diff", docs}, tt.args...)...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, stdout, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, stdout, s)
			}
			assert.NotContains(t, stderr, "Compile Summary")
		})
	}
}
