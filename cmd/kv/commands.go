package kv

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hrishi045/segstore/lib/keycodec"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [segment]... [value]",
		Short: "Stores a value under a key of 1-4 segments (use - to read the value from stdin)",
		Args:  cobra.RangeArgs(2, keycodec.MaxSegments+1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[:len(args)-1]

			var value []byte
			if args[len(args)-1] == "-" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read value from stdin: %w", err)
				}
				value = data
			} else {
				value = []byte(args[len(args)-1])
			}

			if err := remoteStore.Put(context.Background(), key, value); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [segment]...",
		Short: "Reads the value for a key and writes it to stdout",
		Args:  cobra.RangeArgs(1, keycodec.MaxSegments),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := remoteStore.Get(context.Background(), args)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(value)
			return err
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [segment]...",
		Short: "Deletes the record for a key",
		Args:  cobra.RangeArgs(1, keycodec.MaxSegments),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := remoteStore.Delete(context.Background(), args); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	rangeCmd = &cobra.Command{
		Use:   "range [segment]...",
		Short: "Lists all records whose key starts with the given prefix",
		Args:  cobra.RangeArgs(1, keycodec.MaxSegments),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := remoteStore.RangeGet(context.Background(), args)
			if err != nil {
				return err
			}
			for _, record := range records {
				fmt.Printf("key=[%s] data=%s\n",
					strings.Join(record.Key, ", "),
					base64.StdEncoding.EncodeToString(record.Value),
				)
			}
			fmt.Printf("%d record(s)\n", len(records))
			return nil
		},
	}
	rangeDelCmd = &cobra.Command{
		Use:   "rdel [segment]...",
		Short: "Deletes all records whose key starts with the given prefix",
		Args:  cobra.RangeArgs(1, keycodec.MaxSegments),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := remoteStore.RangeDelete(context.Background(), args); err != nil {
				return err
			}
			fmt.Println("range delete successfully")
			return nil
		},
	}
)
