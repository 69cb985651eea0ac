package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/adl/internal/models"
)

const billingUseCases = `### UseCase: view_bill <!beta>
#### Description
The customer wants to see the latest bill.

#### Steps
- Ask for the customer number <mobile>
- Call @get_bill() with the number

#### Solution
Show the bill and point to #billing/late_fees.
Offer the app download. <mobile>

#### Alternative Solution
Send the bill by mail.

#### Fallback Solution
Escalate to a human agent.

#### Examples
Where is my bill?
Show me my invoice.
----

### UseCase: late_fees (2)
#### Category: billing
#### Goal
Explain late fees.
#### Description
Customer asks about late fees.
#### Solution
Explain the fee policy.
#### Context
Fees are charged after 14 days.
----
`

func TestParseUseCases(t *testing.T) {
	useCases, err := ParseUseCases(billingUseCases)
	require.NoError(t, err)
	require.Len(t, useCases, 2)

	viewBill := useCases[0]
	assert.Equal(t, "view_bill", viewBill.ID)
	assert.Nil(t, viewBill.ExecutionLimit)
	assert.Equal(t, []string{"!beta"}, viewBill.Conditions)
	assert.False(t, viewBill.SubUseCase)
	assert.Equal(t, "The customer wants to see the latest bill.\n\n", viewBill.Description)
	assert.Equal(t, "Where is my bill?\nShow me my invoice.\n", viewBill.Examples)
	assert.False(t, viewBill.HasCategory())

	require.Len(t, viewBill.Steps, 3)
	assert.Equal(t, models.Conditional{Text: "- Ask for the customer number", Conditions: []string{"mobile"}}, viewBill.Steps[0])
	assert.Equal(t, models.Conditional{Text: "- Call get_bill with the number", Functions: []string{"get_bill"}}, viewBill.Steps[1])

	require.Len(t, viewBill.Solution, 3)
	assert.Equal(t, "Show the bill and point to #late_fees.", viewBill.Solution[0].Text)
	assert.Equal(t, []string{"billing/late_fees"}, viewBill.Solution[0].UseCaseRefs)
	assert.Equal(t, []string{"mobile"}, viewBill.Solution[1].Conditions)
	assert.Equal(t, "Send the bill by mail.", viewBill.AlternativeSolution[0].Text)
	assert.Equal(t, "Escalate to a human agent.", viewBill.FallbackSolution[0].Text)
	assert.Equal(t, []string{"billing/late_fees"}, viewBill.ExtractReferences())
	assert.Equal(t, []string{"get_bill"}, viewBill.ExtractTools())

	lateFees := useCases[1]
	assert.Equal(t, "late_fees", lateFees.ID)
	require.NotNil(t, lateFees.ExecutionLimit)
	assert.Equal(t, 2, *lateFees.ExecutionLimit)
	assert.Equal(t, "billing", lateFees.Category)
	require.Len(t, lateFees.Goal, 1)
	assert.Equal(t, "Explain late fees.", lateFees.Goal[0].Text)
	assert.Equal(t, "Customer asks about late fees.\n", lateFees.Description)
	require.Len(t, lateFees.Context, 1)
	assert.Equal(t, "Fees are charged after 14 days.", lateFees.Context[0].Text)
}

func TestParseUseCases_Comments(t *testing.T) {
	input := `### UseCase: usecase
#### Description
// this is a comment
The description of the use case 2.
<!-- also a comment -->
#### Solution
Primary Solution
----
`
	useCases, err := ParseUseCases(input)
	require.NoError(t, err)
	require.Len(t, useCases, 1)
	assert.Equal(t, "The description of the use case 2.\n", useCases[0].Description)
	assert.NotContains(t, useCases[0].Description, "comment")
}

func TestParseUseCases_CommentsAfterAnyWhitespace(t *testing.T) {
	for _, prefix := range []string{"\r", "\f", "\v", " \t"} {
		input := "### UseCase: usecase\n#### Description\n" + prefix + "// hidden comment\nVisible.\n" +
			prefix + "<!-- hidden too -->\n#### Solution\nPrimary Solution\n----\n"
		useCases, err := ParseUseCases(input)
		require.NoError(t, err)
		require.Len(t, useCases, 1)
		assert.Equal(t, "Visible.\n", useCases[0].Description, "prefix %q", prefix)
	}
}

func TestParseUseCases_HeaderWithoutColon(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantSub bool
	}{
		{name: "use case", input: "### UseCase usecase1\n#### Solution\nDone.\n----\n", wantID: "usecase1"},
		{name: "sub case", input: "### Case shared <beta>\nShared.\n----\n", wantID: "shared", wantSub: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCases, err := ParseUseCases(tt.input)
			require.NoError(t, err)
			require.Len(t, useCases, 1)
			assert.Equal(t, tt.wantID, useCases[0].ID)
			assert.Equal(t, tt.wantSub, useCases[0].SubUseCase)
		})
	}
}

func TestParseUseCases_Category(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantCategory string
		wantErr      error
		wantMessage  string
	}{
		{
			name:  "no category",
			input: "### UseCase: usecase1\n#### Description\nDesc\n#### Solution \nSolution\n----",
		},
		{
			name:         "category",
			input:        "### UseCase: usecase1\n#### Category: category1\n#### Description\nDesc\n----",
			wantCategory: "category1",
		},
		{
			name:         "spaces and special chars",
			input:        "### UseCase: usecase1\n#### Category: Kategorie 1 - Test!\n#### Description\nDesc\n----",
			wantCategory: "Kategorie 1 - Test!",
		},
		{
			name:        "empty category",
			input:       "### UseCase: usecase1\n#### Category:\n#### Description\nDesc\n----",
			wantErr:     ErrMissingCategory,
			wantMessage: "Missing category in: #### Category:",
		},
		{
			name:        "category without colon",
			input:       "### UseCase: usecase1\n#### Category\n#### Description\nDesc\n----",
			wantErr:     ErrUnknownSection,
			wantMessage: "Unknown UseCase section: #### Category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCases, err := ParseUseCases(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				var syntaxErr *SyntaxError
				require.True(t, errors.As(err, &syntaxErr))
				assert.Equal(t, tt.wantMessage, syntaxErr.Message)
				assert.Equal(t, 2, syntaxErr.Line)
				assert.Nil(t, useCases)
				return
			}
			require.NoError(t, err)
			require.Len(t, useCases, 1)
			assert.Equal(t, tt.wantCategory, useCases[0].Category)
		})
	}
}

func TestParseUseCases_UnknownSection(t *testing.T) {
	input := "### UseCase: a\n#### Description\nd\n#### Notes\nsomething\n"
	_, err := ParseUseCases(input)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.EqualError(t, err, "line 4: Unknown UseCase section: #### Notes")
}

func TestParseUseCases_SubUseCase(t *testing.T) {
	input := `### UseCase: usecase
#### Description
The description.
#### Solution
Primary Solution.
----
### Case: sub_usecase <beta>
Sub use case.
Sub use case, line 2.
----
`
	useCases, err := ParseUseCases(input)
	require.NoError(t, err)
	require.Len(t, useCases, 2)

	assert.Equal(t, "usecase", useCases[0].ID)
	assert.False(t, useCases[0].SubUseCase)

	sub := useCases[1]
	assert.Equal(t, "sub_usecase", sub.ID)
	assert.True(t, sub.SubUseCase)
	assert.Equal(t, []string{"beta"}, sub.Conditions)
	require.Len(t, sub.Solution, 2)
	assert.Equal(t, "Sub use case.", sub.Solution[0].Text)
	assert.Equal(t, "Sub use case, line 2.", sub.Solution[1].Text)
}

func TestParseUseCases_ContentBeforeFirstUseCase(t *testing.T) {
	useCases, err := ParseUseCases("Some preamble text\n\n### UseCase: a\n#### Description\nd\n")
	require.NoError(t, err)
	require.Len(t, useCases, 1)
	assert.Equal(t, "a", useCases[0].ID)
}

func TestParseUseCases_Empty(t *testing.T) {
	useCases, err := ParseUseCases("")
	require.NoError(t, err)
	assert.Empty(t, useCases)
}

func TestParseUseCases_Version(t *testing.T) {
	input := "<!-- version: 1.0.1 -->\n### UseCase: a\n#### Description\nd\n----\n### UseCase: b\n#### Description\nd\n"
	useCases, err := ParseUseCases(input)
	require.NoError(t, err)
	require.Len(t, useCases, 2)
	for _, uc := range useCases {
		assert.Equal(t, "1.0.1", uc.Version)
	}
}

func TestParseDocument(t *testing.T) {
	t.Run("front matter version", func(t *testing.T) {
		doc, err := ParseDocument("---\nversion: 3\nowner: billing\n---\n### UseCase: a\n#### Description\nd\n")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"version": "3", "owner": "billing"}, doc.Meta)
		require.Len(t, doc.UseCases, 1)
		assert.Equal(t, "3", doc.UseCases[0].Version)
	})

	t.Run("marker wins over front matter", func(t *testing.T) {
		doc, err := ParseDocument("---\nversion: 3\n---\n<!-- version: 4 -->\n### UseCase: a\n#### Description\nd\n")
		require.NoError(t, err)
		assert.Equal(t, "4", doc.UseCases[0].Version)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseDocument("### UseCase: a\n#### Unknown\n")
		assert.ErrorIs(t, err, ErrUnknownSection)
	})
}

func TestFilterUseCaseFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"a.md", "base_shared.md", "notes.txt", "sub/b.markdown", ".hidden/c.md"} {
		path := filepath.Join(tmpDir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("### UseCase: x\n"), 0644))
	}

	t.Run("directory", func(t *testing.T) {
		files, err := FilterUseCaseFiles([]string{tmpDir})
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "a.md", filepath.Base(files[0]))
		assert.Equal(t, "b.markdown", filepath.Base(files[1]))
	})

	t.Run("explicit base file and dedup", func(t *testing.T) {
		files, err := FilterUseCaseFiles([]string{
			filepath.Join(tmpDir, "base_shared.md"),
			filepath.Join(tmpDir, "a.md"),
			tmpDir,
		})
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := FilterUseCaseFiles(nil)
		assert.Error(t, err)

		_, err = FilterUseCaseFiles([]string{filepath.Join(tmpDir, "missing")})
		assert.ErrorContains(t, err, "does not exist")

		_, err = FilterUseCaseFiles([]string{filepath.Join(tmpDir, "notes.txt")})
		assert.ErrorContains(t, err, "no use case files")
	})
}

func TestParseFiles(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "first.md")
	second := filepath.Join(tmpDir, "second.md")
	require.NoError(t, os.WriteFile(first, []byte("### UseCase: one\n#### Description\nd\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("### UseCase: two\n#### Description\nd\n"), 0644))

	useCases, err := ParseFiles([]string{second, first})
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, models.IDs(useCases))

	broken := filepath.Join(tmpDir, "broken.md")
	require.NoError(t, os.WriteFile(broken, []byte("### UseCase: x\n#### Bogus\n"), 0644))
	_, err = ParseFiles([]string{broken})
	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.ErrorContains(t, err, "broken.md")
}
