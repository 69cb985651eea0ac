package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/extract"
)

// replyOutput is what the reply command reports
type replyOutput struct {
	UseCase string `json:"useCase"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

// NewReplyCommand creates and returns the reply subcommand
func NewReplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reply [text]",
		Short: "Extract the use case and step markers from an assistant reply",
		Long: `Read an assistant reply from the argument or stdin, strip its
"<ID:x>", "<Step n>" and "<No Step>" markers and report the ids found.
The ids can be fed back to "adl compile --used".`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runReply,
		SilenceUsage: true,
	}
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func runReply(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read reply: %w", err)
		}
		text = string(data)
	}

	message, id := extract.ExtractUseCaseID(text)
	message, step := extract.ExtractUseCaseStepID(message)
	result := replyOutput{UseCase: id, Step: step, Message: message}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "use case: %s\n", orNone(result.UseCase))
	fmt.Fprintf(out, "step:     %s\n", orNone(result.Step))
	fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(result.Message))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
