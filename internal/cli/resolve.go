package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"cellar/internal/domain"
	"cellar/internal/usecase"
)

var (
	resolveName     string
	resolveProducer string
	resolveVintage  int
	resolveJSON     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Find the catalog wine an observation refers to",
	Long: `Resolve a wine observation against the catalog without changing it.

Examples:
  cellar resolve --name "Barolo" --producer "Vietti" --vintage 2019
  cellar resolve --name "Chateau Margaux" --producer "Chateau Margaux" --json`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "wine name (required)")
	resolveCmd.Flags().StringVar(&resolveProducer, "producer", "", "producer name")
	resolveCmd.Flags().IntVar(&resolveVintage, "vintage", 0, "vintage year (omit for non-vintage)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output as JSON")
	resolveCmd.MarkFlagRequired("name")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	st, err := openStore(ctx, GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	target := domain.WineDescriptor{Name: resolveName, ProducerName: resolveProducer}
	if cmd.Flags().Changed("vintage") {
		target.Vintage = domain.Year(resolveVintage)
	}

	res, err := usecase.NewResolveUseCase(st, newResolver(cfg)).Resolve(ctx, target)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if resolveJSON {
		output, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !res.Matched() {
		fmt.Println("No catalog match. Importing this wine would create a new entry.")
		return nil
	}
	fmt.Printf("Matched %s (score: %.3f)\n", res.Wine.ID, res.Score)
	fmt.Printf("  %s\n", describeWine(*res.Wine))
	return nil
}

func describeWine(w domain.CatalogWine) string {
	s := w.Name
	if w.ProducerName != "" {
		s += " - " + w.ProducerName
	}
	if w.Vintage != nil {
		s += fmt.Sprintf(" %d", *w.Vintage)
	} else {
		s += " NV"
	}
	if w.Type != domain.WineTypeUnknown {
		s += fmt.Sprintf(" (%s)", w.Type)
	}
	return s
}
