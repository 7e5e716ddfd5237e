package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		action, _ := cmd.Flags().GetString("action")
		outputJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.GetAuditLog(limit, format, action)
		if err != nil {
			return err
		}

		if outputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tFORMAT\tLABEL\tIP")
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Action,
				e.Format,
				e.Label,
				e.IPAddress,
			)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Int("limit", 50, "Number of entries to show")
	auditCmd.Flags().String("format", "", "Filter by format")
	auditCmd.Flags().String("action", "", "Filter by action (encode, decode, lookup)")
	auditCmd.Flags().Bool("json", false, "Output as JSON")
}
