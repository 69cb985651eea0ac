package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCommands(t *testing.T) {
	home := newProject(t)
	docs := t.TempDir()
	file := writeFile(t, docs, "billing.md", billingDoc)

	stdout, _, err := execute(t, "store", "save", file, "--tag", "billing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved billing")
	assert.FileExists(t, filepath.Join(home, ".adl", "store.db"))

	stdout, _, err = execute(t, "store", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "billing")

	stdout, _, err = execute(t, "store", "list", "--tag", "other")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No stored documents")

	stdout, _, err = execute(t, "store", "get", "billing")
	require.NoError(t, err)
	assert.Equal(t, billingDoc, stdout)

	out := filepath.Join(t.TempDir(), "copy.md")
	_, _, err = execute(t, "store", "get", "billing", "-o", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, billingDoc, string(data))

	stdout, _, err = execute(t, "store", "revisions", "billing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no earlier revisions")

	require.NoError(t, os.WriteFile(file, []byte(strings.Replace(billingDoc, "5 EUR", "7 EUR", 1)), 0644))
	_, _, err = execute(t, "store", "save", file)
	require.NoError(t, err)

	stdout, _, err = execute(t, "store", "revisions", "billing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1. ")

	stdout, _, err = execute(t, "store", "delete", "billing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted billing")

	_, _, err = execute(t, "store", "get", "billing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `document "billing" not found`)
}

func TestStoreSaveNameAndJSON(t *testing.T) {
	newProject(t)
	file := writeFile(t, t.TempDir(), "billing.md", billingDoc)

	_, _, err := execute(t, "store", "save", file, "invoices", "-t", "a", "-t", "b")
	require.NoError(t, err)

	stdout, _, err := execute(t, "store", "list", "--json")
	require.NoError(t, err)

	var docs []struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "invoices", docs[0].Name)
	assert.ElementsMatch(t, []string{"a", "b"}, docs[0].Tags)
}

func TestStoreSaveRejectsBrokenDocument(t *testing.T) {
	newProject(t)
	file := writeFile(t, t.TempDir(), "broken.md", "### UseCase: a\n#### Wrong\n")

	_, _, err := execute(t, "store", "save", file)
	assert.Error(t, err)
}

func TestStoreSaveRejectsNonDocuments(t *testing.T) {
	newProject(t)
	dir := t.TempDir()

	for _, name := range []string{"notes.txt", "base_shared.md"} {
		file := writeFile(t, dir, name, billingDoc)
		_, _, err := execute(t, "store", "save", file)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "is not a use case document")
	}
}

func TestStorePathFlag(t *testing.T) {
	newProject(t)
	file := writeFile(t, t.TempDir(), "billing.md", billingDoc)
	dbPath := filepath.Join(t.TempDir(), "custom.db")

	_, _, err := execute(t, "--store-path", dbPath, "store", "save", file)
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	stdout, _, err := execute(t, "store", "list", "--store-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "billing")
}
