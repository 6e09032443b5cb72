// Package cobraext provides Cobra command factories for the composedql parser.
// It isolates the CLI dependencies (cobra, yaml, multierr) so that users of
// the parser library never import them.
package cobraext

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relux-works/composedql/composedql"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// Settings holds defaults shared by all commands. It is read when a command
// runs, so a root command may fill it in from a config file in
// PersistentPreRunE.
type Settings struct {
	Format  string // default output format: "json", "yaml" or "compact"
	Lenient bool   // default for --lenient
	Parser  *composedql.ParserConfig
}

type outputMode int

const (
	modeJSON outputMode = iota
	modeYAML
	modeCompact
)

// parseOutputMode converts a string flag value to an outputMode.
// "compact" and "outline" map to the indented outline.
func parseOutputMode(s string) (outputMode, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return modeJSON, nil
	case "yaml", "yml":
		return modeYAML, nil
	case "compact", "outline":
		return modeCompact, nil
	default:
		return 0, fmt.Errorf("unknown format %q: use \"json\", \"yaml\", or \"compact\"", s)
	}
}

func (s *Settings) mode(flag string) (outputMode, error) {
	if flag == "" {
		flag = s.Format
	}
	return parseOutputMode(flag)
}

func render(q composedql.Query, mode outputMode) ([]byte, error) {
	switch mode {
	case modeYAML:
		return encodeYAML(q)
	case modeCompact:
		return composedql.FormatCompact(q), nil
	default:
		return json.Marshal(q)
	}
}

func write(cmd *cobra.Command, data []byte) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n"))
	return err
}

// ParseCommand creates a "parse" subcommand that parses a composed query and
// prints the resulting tree. With --lenient, failures print false instead
// of returning an error.
func ParseCommand(s *Settings) *cobra.Command {
	var (
		format  string
		lenient bool
	)

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a composed query and print its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := s.mode(format)
			if err != nil {
				return err
			}

			var q composedql.Query
			if lenient || s.Lenient {
				var ok bool
				if q, ok = composedql.TryParse(args[0], s.Parser); !ok {
					return write(cmd, []byte("false"))
				}
			} else if q, err = composedql.Parse(args[0], s.Parser); err != nil {
				return err
			}

			data, err := render(q, mode)
			if err != nil {
				return err
			}
			return write(cmd, data)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", `Output format: "json", "yaml" or "compact"`)
	cmd.Flags().BoolVar(&lenient, "lenient", false, "Print false instead of failing on malformed queries")
	return cmd
}

// FieldCommand creates a "field" subcommand that parses a single field
// segment, optionally with a separately supplied scope. --kind sets the kind
// of a plain identifier when no scope is given.
func FieldCommand(s *Settings) *cobra.Command {
	var format, kind string

	cmd := &cobra.Command{
		Use:   "field <segment> [scope]",
		Short: "Parse a single field segment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := s.mode(format)
			if err != nil {
				return err
			}

			var n composedql.Node
			if len(args) == 2 {
				n, err = composedql.ParseFieldScope(args[0], args[1], s.Parser)
			} else {
				n, err = composedql.ParseFieldKind(args[0], composedql.Kind(kind), s.Parser)
			}
			if err != nil {
				return err
			}

			var data []byte
			switch {
			case n == nil:
				data = []byte("null")
			case mode == modeJSON:
				data, err = json.Marshal(n)
			default:
				data, err = render(composedql.Query{n}, mode)
			}
			if err != nil {
				return err
			}
			return write(cmd, data)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", `Output format: "json", "yaml" or "compact"`)
	cmd.Flags().StringVar(&kind, "kind", string(composedql.KindField), `Kind of a plain identifier: "field", "arg" or "property"`)
	return cmd
}

// CheckCommand creates a "check" subcommand that validates one or more
// queries. It prints one line per query, either its canonical form or the
// error code, and fails when any query is malformed.
func CheckCommand(s *Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "check <query>...",
		Short: "Validate composed queries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var errs error
			for i, query := range args {
				q, err := composedql.Parse(query, s.Parser)
				if err != nil {
					fmt.Fprintf(out, "%d\t%s\t%s\n", i+1, composedql.CodeOf(err), err)
					errs = multierr.Append(errs, fmt.Errorf("query %d: %w", i+1, err))
					continue
				}
				fmt.Fprintf(out, "%d\tok\t%s\n", i+1, composedql.Format(q))
			}
			if errs != nil {
				return fmt.Errorf("%d of %d queries rejected: %w", len(multierr.Errors(errs)), len(args), errs)
			}
			return nil
		},
	}
}

// AddCommands adds the "parse", "field" and "check" commands as
// subcommands of parent.
func AddCommands(parent *cobra.Command, s *Settings) {
	parent.AddCommand(ParseCommand(s))
	parent.AddCommand(FieldCommand(s))
	parent.AddCommand(CheckCommand(s))
}
