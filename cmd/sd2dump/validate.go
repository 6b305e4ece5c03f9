package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sd2 "go.sd2.dev/pkg"
)

var (
	validateCmd = &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an SD2 file, reporting every error found",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("expected exactly one argument: the path to an SD2 file")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var errs []*sd2.ErrorRecord
			r := sd2.NewReader(sd2.NewStringSource(string(data)), sd2.ReaderConfig{
				AllowRecovery: true,
				OnError:       func(rec *sd2.ErrorRecord) { errs = append(errs, rec) },
			})

			for {
				if _, ok := r.Next().(*sd2.EndDocumentEvent); ok {
					break
				}
			}

			if len(errs) == 0 {
				fmt.Println("ok")
				return nil
			}

			for _, rec := range errs {
				fmt.Printf("%s: %s\n", rec.Code, rec.Error())
			}
			return fmt.Errorf("%d error(s) found", len(errs))
		},
	}
)

func init() {
	rootCmd.AddCommand(validateCmd)
}
