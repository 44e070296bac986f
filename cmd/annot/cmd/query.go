/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/annot/internal/colors"
	"github.com/blacktop/annot/internal/utils"
	"github.com/blacktop/annot/pkg/annotation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntP("context", "C", 1, "Entries of context before AND after the address")
	queryCmd.Flags().IntP("before-context", "B", -1, "Entries of context before the address")
	queryCmd.Flags().IntP("after-context", "A", -1, "Entries of context after the address")
	queryCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	viper.BindPFlag("query.json", queryCmd.Flags().Lookup("json"))
	queryCmd.MarkZshCompPositionalArgumentFile(1, "*.json")
}

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <annot.json> <addr>",
	Short: "Show what is known around an address",
	Example: heredoc.Doc(`
		# show the entry at 0x1000 with one entry of context either side
		❯ annot query bin.json 0x1000
		# 3 entries after, none before
		❯ annot query bin.json 0x1000 -B0 -A3`),
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		if viper.GetBool("color") {
			force := true
			colors.Init(&force)
		}

		context, _ := cmd.Flags().GetInt("context")
		before, _ := cmd.Flags().GetInt("before-context")
		after, _ := cmd.Flags().GetInt("after-context")
		if !cmd.Flags().Changed("before-context") {
			before = context
		}
		if !cmd.Flags().Changed("after-context") {
			after = context
		}
		if before < 0 || after < 0 {
			return fmt.Errorf("context window counts must be non-negative")
		}

		addr, err := utils.ConvertStrToInt(args[1])
		if err != nil {
			return fmt.Errorf("failed to parse address %q: %w", args[1], err)
		}

		set, err := annotation.Open(filepath.Clean(args[0]))
		if err != nil {
			return err
		}

		res := set.Index().Query(addr, before, after)

		if viper.GetBool("query.json") {
			payload := struct {
				Address string      `json:"address"`
				Before  []entryJSON `json:"before"`
				Current entryJSON   `json:"current"`
				After   []entryJSON `json:"after"`
			}{
				Address: utils.FormatAddr(res.Addr),
				Before:  entriesJSON(res.Before),
				Current: entryToJSON(res.Current),
				After:   entriesJSON(res.After),
			}
			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal query result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		for _, e := range res.Before {
			fmt.Printf("  %s\n", formatEntry(e))
		}
		fmt.Printf("%s %s\n", colors.BoldGreen().Sprint(">"), formatEntry(res.Current))
		for _, e := range res.After {
			fmt.Printf("  %s\n", formatEntry(e))
		}

		return nil
	},
}

type entryJSON struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	Function    bool   `json:"function,omitempty"`
	LineComment string `json:"line_comment,omitempty"`
	FuncComment string `json:"func_comment,omitempty"`
}

func entryToJSON(e annotation.Entry) entryJSON {
	return entryJSON{
		Address:     utils.FormatAddr(e.Addr),
		Name:        e.Name,
		Function:    e.Function,
		LineComment: e.LineComment,
		FuncComment: e.FuncComment,
	}
}

func entriesJSON(entries []annotation.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryToJSON(e))
	}
	return out
}

func formatEntry(e annotation.Entry) string {
	var parts []string
	parts = append(parts, colors.Faint().Sprint(utils.FormatAddr(e.Addr)))
	if e.HasName {
		parts = append(parts, fmt.Sprintf("name=%s", colors.Bold().Sprint(e.Name)))
	}
	if e.Function {
		parts = append(parts, colors.Cyan().Sprint("function"))
	}
	if e.HasLineComment {
		parts = append(parts, fmt.Sprintf("line_comment=\"%s\"", utils.EscapeComment(e.LineComment)))
	}
	if e.HasFuncComment {
		parts = append(parts, fmt.Sprintf("func_comment=\"%s\"", utils.EscapeComment(e.FuncComment)))
	}
	if e.Empty() {
		parts = append(parts, colors.Faint().Sprint("no_entry"))
	}
	return strings.Join(parts, " ")
}
