package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harrison/adl/internal/config"
)

const billingDoc = `### UseCase: view_bill
#### Description
Customer wants to see the bill.
#### Solution
<mobile>Open the app.
</>
Call @get_bill() and explain #late_fees.
[yes] Explain #late_fees
[no] Say goodbye
#### Alternative Solution
Send the bill by mail.
#### Fallback Solution
Hand over to an agent.
#### Examples
Show me my bill
----
### Case: late_fees
Late fees are 5 EUR.
----
### UseCase: cancel <premium>
#### Description
Cancel a contract.
#### Solution
See #retention.
----
`

// newProject points ADL_HOME at a fresh directory so every command run
// reads its config, logs and store from there
func newProject(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command and returns stdout and stderr
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
