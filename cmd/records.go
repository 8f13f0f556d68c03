package cmd

import (
	"github.com/jjtimmons/seqcmp/internal/render"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/spf13/cobra"
)

// recordsCmd is for listing the sequences in a FASTA file
var recordsCmd = &cobra.Command{
	Use:                        "records [fasta]",
	Short:                      "List the sequences in a FASTA file",
	Args:                       cobra.ExactArgs(1),
	RunE:                       recordsExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  seqcmp records globins.fa",
	Long: `List the sequences in a FASTA file with their IDs, names and lengths.

A sequence's ID or name can be passed to 'seqcmp compare' to select it.
Records without any residues are skipped and "-" reads from stdin.`,
	Aliases: []string{"ls"},
}

func recordsExec(cmd *cobra.Command, args []string) error {
	recs, err := seq.ReadFile(args[0])
	if err != nil {
		return err
	}
	return render.Records(cmd.OutOrStdout(), recs)
}

func init() {
	RootCmd.AddCommand(recordsCmd)
}
