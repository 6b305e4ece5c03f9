package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sd2 "go.sd2.dev/pkg"
)

var (
	dumpCmd = &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the document event stream for an SD2 file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("expected exactly one argument: the path to an SD2 file")
			}

			logger := logrus.StandardLogger()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			r := sd2.NewReader(sd2.NewStringSource(string(data)), sd2.ReaderConfig{
				AllowRecovery: !strict,
				OnError: func(rec *sd2.ErrorRecord) {
					logger.Warnf("%s: %s", rec.Code, rec.Error())
				},
			})

			for {
				ev := r.Next()
				fmt.Println(sd2.ReprEvent(ev))
				if _, ok := ev.(*sd2.EndDocumentEvent); ok {
					break
				}
			}

			if err := r.Err(); err != nil {
				return err
			}
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(dumpCmd)
}
