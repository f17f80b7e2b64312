// Package main contains the jsonlt CLI, a thin cobra wrapper around the
// jsonlt package's Table operations.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsonlt/jsonlt-go"
	"github.com/jsonlt/jsonlt-go/internal/cliconfig"
	"github.com/jsonlt/jsonlt-go/internal/fsx"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
)

type rootFlags struct {
	key        string
	configFile string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "jsonlt",
		Short: "Inspect and edit JSONLT record store files",
	}
	rootCmd.PersistentFlags().StringVar(&flags.key, "key", "", "key specifier field name (or comma-separated fields for a compound key)")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to a jsonlt CLI TOML config file")

	rootCmd.AddCommand(getCmd(flags))
	rootCmd.AddCommand(putCmd(flags))
	rootCmd.AddCommand(deleteCmd(flags))
	rootCmd.AddCommand(compactCmd(flags))
	rootCmd.AddCommand(dumpCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openTable(path string, flags *rootFlags) (*jsonlt.Table, error) {
	cfg := cliconfig.Default()
	if flags.configFile != "" {
		loaded, err := cliconfig.Load(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	opts := jsonlt.OpenOptions{LockTimeout: cfg.LockTimeout()}
	if cfg.Table.AutoReload != nil {
		opts.NoAutoReload = !*cfg.Table.AutoReload
	}
	if cfg.Table.MaxFileSizeBytes > 0 {
		opts.MaxFileSize = cfg.Table.MaxFileSizeBytes
	}

	if flags.key != "" {
		spec, err := parseSpecifierFlag(flags.key)
		if err != nil {
			return nil, err
		}
		opts.Spec = spec
	}

	return jsonlt.Open(fsx.NewOS(), path, opts)
}

func parseSpecifierFlag(flag string) (jsonlt.KeySpecifier, error) {
	var fields []string
	start := 0
	for i := 0; i <= len(flag); i++ {
		if i == len(flag) || flag[i] == ',' {
			fields = append(fields, flag[start:i])
			start = i + 1
		}
	}
	if len(fields) == 1 {
		return jsonlt.NewScalarSpecifier(fields[0])
	}
	return jsonlt.NewCompoundSpecifier(fields)
}

func decodeJSON(text string) (jsonval.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON %q: %w", text, err)
	}
	return normalizeDecoded(v), nil
}

// normalizeDecoded converts the generic shapes encoding/json produces
// (map[string]any, []any, json.Number) into jsonval's canonical shapes.
func normalizeDecoded(v any) jsonval.Value {
	switch t := v.(type) {
	case map[string]any:
		obj := make(jsonval.Object, len(t))
		for k, e := range t {
			obj[k] = normalizeDecoded(e)
		}
		return obj
	case []any:
		arr := make(jsonval.Array, len(t))
		for i, e := range t {
			arr[i] = normalizeDecoded(e)
		}
		return arr
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return jsonval.Int64(i)
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

func parseKeyArg(text string) (jsonlt.Key, error) {
	v, err := decodeJSON(text)
	if err != nil {
		return jsonlt.Key{}, err
	}
	return keymodel.FromJSON(v)
}

func parseRecordArg(text string) (jsonlt.Record, error) {
	v, err := decodeJSON(text)
	if err != nil {
		return nil, err
	}
	obj, ok := jsonval.AsObject(v)
	if !ok {
		return nil, fmt.Errorf("record must be a JSON object, got %q", text)
	}
	return obj, nil
}

func getCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path> <key-json>",
		Short: "Print the record stored at a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := openTable(args[0], flags)
			if err != nil {
				return err
			}
			key, err := parseKeyArg(args[1])
			if err != nil {
				return err
			}
			record, ok, err := t.Get(key)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("null")
				return nil
			}
			return printJSON(record)
		},
	}
}

func putCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "put <path> <record-json>",
		Short: "Insert or replace a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := openTable(args[0], flags)
			if err != nil {
				return err
			}
			record, err := parseRecordArg(args[1])
			if err != nil {
				return err
			}
			return t.Put(record)
		},
	}
}

func deleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path> <key-json>",
		Short: "Delete the record stored at a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := openTable(args[0], flags)
			if err != nil {
				return err
			}
			key, err := parseKeyArg(args[1])
			if err != nil {
				return err
			}
			existed, err := t.Delete(key)
			if err != nil {
				return err
			}
			fmt.Println(existed)
			return nil
		},
	}
}

func compactCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <path>",
		Short: "Rewrite the file to current records only",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := openTable(args[0], flags)
			if err != nil {
				return err
			}
			return t.Compact()
		},
	}
}

func dumpCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <path>",
		Short: "Print every record in key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := openTable(args[0], flags)
			if err != nil {
				return err
			}
			items, err := t.Items()
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := printJSON(item.Record); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
