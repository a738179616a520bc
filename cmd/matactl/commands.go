package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gadai/backend/internal/domain"
	"github.com/gadai/backend/internal/infrastructure/rulefile"
	"github.com/gadai/backend/internal/logging"
	"github.com/gadai/backend/internal/usecase"
	"github.com/gadai/backend/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "matactl",
		Short: "Check pawned items against Mata priority rules",
		Long: `matactl evaluates pawned items against a YAML file of pawn-term rules and
reports which items are "Mata" (priority) and which rule matched.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWithWriter(logging.LevelFromVerbosity(verbosity), "console", cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newMatchCmd() *cobra.Command {
	var rulesPath, itemPath, tenantID string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Classify one item",
		Example: `  matactl match --rules rules.yaml --item item.json --pt T1
  cat item.json | matactl match --rules rules.yaml --item -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var item domain.PawnItem
			if err := readJSON(cmd.InOrStdin(), itemPath, &item); err != nil {
				return err
			}

			svc := newFileService(rulesPath)
			result, err := svc.Match(cmd.Context(), &domain.MatchRequest{Item: item, TenantID: tenantID})
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule file")
	cmd.Flags().StringVar(&itemPath, "item", "", "JSON item file (- for stdin)")
	cmd.Flags().StringVar(&tenantID, "pt", "", "only consider rules of this PT")
	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

func newClassifyCmd() *cobra.Command {
	var rulesPath, itemsPath, tenantID string

	cmd := &cobra.Command{
		Use:     "classify",
		Short:   "Classify a selection of items",
		Example: `  matactl classify --rules rules.yaml --items items.json --pt T1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []domain.PawnItem
			if err := readJSON(cmd.InOrStdin(), itemsPath, &items); err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("%s contains no items", itemsPath)
			}

			svc := newFileService(rulesPath)
			batch, err := svc.Classify(cmd.Context(), &domain.ClassifyRequest{Items: items, TenantID: tenantID})
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), batch)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule file")
	cmd.Flags().StringVar(&itemsPath, "items", "", "JSON array of items (- for stdin)")
	cmd.Flags().StringVar(&tenantID, "pt", "", "only consider rules of this PT")
	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "matactl version %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

// newFileService builds a cache-less Mata service over a rule file
func newFileService(rulesPath string) *usecase.MataService {
	return usecase.NewMataService(nil, rulefile.NewLoader(rulesPath), nil, usecase.MataServiceConfig{
		EnableDebugLogging: true,
	})
}

func readJSON(stdin io.Reader, path string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
