package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsCommand(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, docs, "billing.md", billingDoc)

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "options with references",
			args: []string{"-u", "view_bill"},
			want: []string{"[yes] Explain #late_fees -> late_fees\n", "[no] Say goodbye\n"},
		},
		{
			name: "boxes",
			args: []string{"-u", "view_bill", "--boxes"},
			want: []string{"[yes] Explain #late_fees\n"},
		},
		{
			name: "no options",
			args: []string{"-u", "cancel"},
			want: []string{"cancel has no flow options"},
		},
		{name: "unknown use case", args: []string{"-u", "nope"}, wantErr: true},
		{name: "use case required", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"options", docs}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, stdout, s)
			}
		})
	}
}

func TestOptionsCommandJSON(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, docs, "billing.md", billingDoc)

	stdout, _, err := execute(t, "options", docs, "-u", "view_bill", "-c", "mobile", "--json")
	require.NoError(t, err)

	var out optionsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "view_bill", out.UseCase)
	assert.Contains(t, out.Content, "Open the app.")
	assert.NotContains(t, out.Content, "[yes]")
	require.Len(t, out.Options, 2)
	assert.Equal(t, "yes", out.Options[0].Option)
	assert.Equal(t, "late_fees", out.Options[0].UseCase)
	assert.Empty(t, out.Options[1].UseCase)
}
