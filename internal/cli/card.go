package cli

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"cellar/internal/domain"
)

//go:embed templates/*
var cardTemplates embed.FS

var (
	cardInput    string
	cardMarkdown bool
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Render a pairing result as a printable card",
	Long: `Render the JSON output of 'cellar pair --json' as a plain text or
Markdown pairing card.

Examples:
  cellar pair -q "duck confit" --json > duck.json
  cellar card --in duck.json
  cellar pair -q "oysters" --json | cellar card --markdown`,
	RunE: runCard,
}

func init() {
	rootCmd.AddCommand(cardCmd)
	cardCmd.Flags().StringVar(&cardInput, "in", "", "pairing JSON file (default: stdin)")
	cardCmd.Flags().BoolVar(&cardMarkdown, "markdown", false, "render Markdown instead of plain text")
}

func runCard(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if cardInput != "" {
		data, err = os.ReadFile(cardInput)
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read pairing result: %w", err)
	}

	var resp domain.PairingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse pairing result: %w", err)
	}

	name := "templates/card.txt"
	if cardMarkdown {
		name = "templates/card.md"
	}
	out, err := renderCard(name, &resp)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func renderCard(name string, resp *domain.PairingResponse) (string, error) {
	content, err := cardTemplates.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("card").Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, resp); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
		"wine": describeWine,
	}
}
