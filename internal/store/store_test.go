package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
)

const billingDoc = `<!-- version: 1.2.0 -->
### UseCase: view_bill
#### Description
Customer wants to see the bill.
#### Solution
Show the bill. See #payments/late_fees.
#### Examples
Where is my bill?
----
### Case: late_fees
Late fees apply after 14 days.
----
`

const paymentsDoc = `### UseCase: pay_bill
#### Description
Customer wants to pay.
#### Solution
Call @pay_bill().
----
### UseCase: view_bill
#### Description
Shadowed by billing.md.
#### Solution
Never returned first.
----
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{name: "creates database", dbPath: filepath.Join(t.TempDir(), "adl.db")},
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "creates parent directories", dbPath: filepath.Join(t.TempDir(), "nested", "dir", "adl.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			version, err := s.GetLatestVersion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, tt.dbPath, s.Path())
		})
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyMigrations(ctx))
	versions, err := s.GetAppliedVersions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, len(migrations))
	assert.Equal(t, 1, versions[0].Version)
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "billing.md", billingDoc, []string{"billing", " support ", "billing", ""})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "billing.md", saved.Name)
	assert.Equal(t, "1.2.0", saved.Version)
	assert.Equal(t, []string{"billing", "support"}, saved.Tags)
	assert.Equal(t, []string{"view_bill", "late_fees"}, saved.UseCaseIDs)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.Get(ctx, "billing.md")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, billingDoc, got.Content)
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(context.Background(), "broken.md", "### UseCase: x\n#### Notes\n", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrUnknownSection)

	_, err = s.Get(context.Background(), "broken.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRequiresName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(context.Background(), "  ", billingDoc, nil)
	assert.Error(t, err)
}

func TestSaveReplacesAndKeepsRevision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "payments.md", paymentsDoc, nil)
	require.NoError(t, err)

	updated := "### UseCase: refund\n#### Description\nRefund.\n#### Solution\nRefund it.\n----\n"
	second, err := s.Save(ctx, "payments.md", updated, []string{"v2"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"refund"}, second.UseCaseIDs)
	assert.Equal(t, []string{"v2"}, second.Tags)

	revisions, err := s.Revisions(ctx, "payments.md")
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, paymentsDoc, revisions[0].Content)

	// saving identical content adds no revision
	_, err = s.Save(ctx, "payments.md", updated, nil)
	require.NoError(t, err)
	revisions, err = s.Revisions(ctx, "payments.md")
	require.NoError(t, err)
	assert.Len(t, revisions, 1)

	found, err := s.FindUseCases(ctx, []string{"pay_bill"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "payments.md", paymentsDoc, []string{"payments"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "billing.md", billingDoc, []string{"billing", "support"})
	require.NoError(t, err)

	tests := []struct {
		name string
		tag  string
		want []string
	}{
		{name: "all documents by name", tag: "", want: []string{"billing.md", "payments.md"}},
		{name: "filtered by tag", tag: "payments", want: []string{"payments.md"}},
		{name: "unknown tag", tag: "nope", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.List(ctx, tt.tag)
			require.NoError(t, err)
			var names []string
			for _, d := range docs {
				names = append(names, d.Name)
				assert.NotEmpty(t, d.UseCaseIDs)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "billing.md", billingDoc, nil)
	require.NoError(t, err)
	_, err = s.Save(ctx, "billing.md", paymentsDoc, nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "billing.md"))

	_, err = s.Get(ctx, "billing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := s.FindUseCases(ctx, []string{"view_bill", "pay_bill"})
	require.NoError(t, err)
	assert.Empty(t, found)

	assert.ErrorIs(t, s.Delete(ctx, "billing.md"), ErrNotFound)
}

func TestUseCases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "billing.md", billingDoc, nil)
	require.NoError(t, err)

	useCases, err := s.UseCases(ctx, "billing.md")
	require.NoError(t, err)
	require.Len(t, useCases, 2)
	assert.Equal(t, "view_bill", useCases[0].ID)
	assert.Equal(t, []string{"payments/late_fees"}, useCases[0].ExtractReferences())
	assert.True(t, useCases[1].SubUseCase)

	_, err = s.UseCases(ctx, "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindUseCases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "payments.md", paymentsDoc, nil)
	require.NoError(t, err)
	_, err = s.Save(ctx, "billing.md", billingDoc, nil)
	require.NoError(t, err)

	found, err := s.FindUseCases(ctx, []string{"pay_bill", "view_bill", "late_fees", "unknown"})
	require.NoError(t, err)

	// billing.md sorts before payments.md, so its view_bill wins
	assert.Equal(t, []string{"view_bill", "late_fees", "pay_bill"}, models.IDs(found))
	assert.Equal(t, "Customer wants to see the bill.\n", found[0].Description)

	none, err := s.FindUseCases(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
