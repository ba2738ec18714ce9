package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dronefly-project/dronefly/am"
	"github.com/dronefly-project/dronefly/embed"
	"github.com/dronefly-project/dronefly/errors"
	"github.com/dronefly-project/dronefly/parser"
	"github.com/dronefly-project/dronefly/plugin"
	"github.com/dronefly-project/dronefly/plugin/inat"
	"github.com/dronefly-project/dronefly/query"
)

// ParseCmd parses a query
var ParseCmd = &cobra.Command{
	Use:   "parse <query...>",
	Short: "Parse a query and show its canonical form",
	Long: `Parse a query the way the bot does and show the result.

The canonical form is what the bot shows back to the user; parsing it again
gives the same query.

Examples:
  dronefly parse my rg birds
  dronefly parse --normalize "not by me from home"
  dronefly parse --json ducks in birds since june`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

// RefineCmd merges a follow-up into a rendered message's query
var RefineCmd = &cobra.Command{
	Use:   "refine [flags] <follow-up...>",
	Short: "Merge a follow-up into the query behind a rendered message",
	Long: `Recover the query behind a rendered message and lay a follow-up over it,
the way a reaction reply does in chat.

The message is given by its link (--url) and body (--body, or --body-file;
"-" reads the body from stdin).

Examples:
  dronefly refine --url "https://www.inaturalist.org/observations?taxon_id=3&user_id=99" from peru
  dronefly refine --body-file message.md by me`,
	RunE: runRefine,
}

var (
	parseJSON      bool
	parseNormalize bool
	refineURL      string
	refineBody     string
	refineBodyFile string
	refineJSON     bool
)

func init() {
	ParseCmd.Flags().BoolVar(&parseJSON, "json", false, "Output the parsed query as JSON")
	ParseCmd.Flags().BoolVar(&parseNormalize, "normalize", false, "Show the normalized flag form only")

	RefineCmd.Flags().StringVar(&refineURL, "url", "", "Primary link of the rendered message")
	RefineCmd.Flags().StringVar(&refineBody, "body", "", "Body text of the rendered message")
	RefineCmd.Flags().StringVar(&refineBodyFile, "body-file", "", `File holding the body text ("-" for stdin)`)
	RefineCmd.Flags().BoolVar(&refineJSON, "json", false, "Output the merged query as JSON")
}

// loadPlugin initializes the iNat plugin from the active configuration.
func loadPlugin(ctx context.Context) (*inat.Plugin, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	cfg.Plugin.WatchConfig = false

	p := inat.New()
	if err := p.Initialize(ctx, plugin.NewServiceRegistry(cfg, am.ActiveConfigPath(), nil)); err != nil {
		return nil, err
	}
	return p, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := loadPlugin(ctx)
	if err != nil {
		return err
	}
	defer p.Shutdown(ctx)

	text := strings.Join(args, " ")

	if parseNormalize {
		normalized, err := parser.New(parser.WithMacros(p.Macros())).Normalize(text)
		if err != nil {
			return reportParseError(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), normalized)
		return nil
	}

	res, err := p.Query(ctx, inat.Request{UserID: "cli"}, query.RawText(text))
	if err != nil {
		return reportParseError(cmd, err)
	}
	return printResult(cmd, res, parseJSON)
}

func runRefine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	body := refineBody
	if refineBodyFile != "" {
		var data []byte
		var err error
		if refineBodyFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(refineBodyFile)
		}
		if err != nil {
			return errors.Wrap(err, "failed to read message body")
		}
		body = string(data)
	}
	if refineURL == "" && body == "" {
		return errors.New("give the rendered message with --url and/or --body")
	}

	p, err := loadPlugin(ctx)
	if err != nil {
		return err
	}
	defer p.Shutdown(ctx)

	msg := embed.Message{URL: refineURL, Description: body}
	res, err := p.Refine(ctx, inat.Request{UserID: "cli", MessageID: "cli"}, msg, strings.Join(args, " "))
	if err != nil {
		return reportParseError(cmd, err)
	}

	if !refineJSON {
		state := embed.FromMessage(msg)
		if table := state.Table(); table != embed.NoTable {
			pterm.Info.Printfln("Message lists a %s table", table)
		}
	}
	return printResult(cmd, res, refineJSON)
}

func printResult(cmd *cobra.Command, res inat.Result, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(res.Query, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal query to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	q := res.Query
	rows := pterm.TableData{{"Clause", "Value"}}
	add := func(name, value string) {
		if value != "" {
			rows = append(rows, []string{name, value})
		}
	}
	if q.Main != nil {
		add("of", q.Main.String())
	}
	if q.Ancestor != nil {
		add("in", q.Ancestor.String())
	}
	add("from", q.Place)
	add("in prj", q.Project)
	add("by", q.User)
	add("id by", q.IDBy)
	add("not by", q.UnobservedBy)
	add("except by", q.ExceptBy)
	if q.ControlledTerm != nil {
		add("with", q.ControlledTerm.String())
	}
	add("per", q.Per)
	add("opt", strings.Join(q.Options, " "))
	add("dates", res.Dates)

	out := cmd.OutOrStdout()
	if q.IsEmpty() {
		fmt.Fprintln(out, "(empty query)")
		return nil
	}
	fmt.Fprintln(out, q.String())
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(out).Render()
}

// reportParseError prints a query error with its suggestions and returns a
// short error for the exit status.
func reportParseError(cmd *cobra.Command, err error) error {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		fmt.Fprintln(cmd.ErrOrStderr(), pe.FormatError(parser.ErrorContextTerminal))
		return errors.Newf("query not understood (%s)", pe.Kind)
	}
	return err
}
