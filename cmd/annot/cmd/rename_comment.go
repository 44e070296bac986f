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
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/annot/internal/utils"
	"github.com/blacktop/annot/pkg/annotation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(renameCommentCmd)

	renameCommentCmd.Flags().BoolP("func", "f", false, "Target the function comment instead of the line comment")
	viper.BindPFlag("rename-comment.func", renameCommentCmd.Flags().Lookup("func"))
	renameCommentCmd.MarkZshCompPositionalArgumentFile(1, "*.json")
}

// renameCommentCmd represents the rename-comment command
var renameCommentCmd = &cobra.Command{
	Use:   "rename-comment <annot.json> <addr> <comment>",
	Short: "Update an existing comment (empty comment deletes it)",
	Example: heredoc.Doc(`
		❯ annot rename-comment bin.json 0x1004 "decrypts the header only"
		# delete the function comment
		❯ annot rename-comment bin.json 0x1000 "" --func`),
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		addr, err := utils.ConvertStrToInt(args[1])
		if err != nil {
			return fmt.Errorf("failed to parse address %q: %w", args[1], err)
		}

		path := filepath.Clean(args[0])
		set, err := annotation.Open(path)
		if err != nil {
			return err
		}

		if viper.GetBool("rename-comment.func") {
			err = set.RenameFuncComment(addr, args[2])
		} else {
			err = set.RenameLineComment(addr, args[2])
		}
		if err != nil {
			return err
		}

		if args[2] == "" {
			log.Infof("deleted comment at %s", utils.FormatAddr(addr))
		} else {
			log.Infof("updated comment at %s", utils.FormatAddr(addr))
		}
		return set.Save(path)
	},
}
