package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/anaflow/internal/catalog"
	"github.com/maxkimambo/anaflow/internal/display"
	apperrors "github.com/maxkimambo/anaflow/internal/errors"
)

var (
	listCatalog    string
	listOnlyActive bool
)

var listCmd = &cobra.Command{
	Use:   "list [analysis]",
	Short: "Show the analyses of the catalog, or the details of one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listCatalog, "catalog", "", "Analysis catalog (defaults to the one of O2DPG_ROOT)")
	listCmd.Flags().BoolVar(&listOnlyActive, "enabled", false, "Only show enabled analyses")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cat := catalog.New(cfg.CatalogPath)
	if len(args) == 1 {
		return showAnalysis(cmd, cat, args[0])
	}

	descriptors, err := cat.Load(nil, !listOnlyActive)
	if err != nil {
		return err
	}

	tbl := display.NewTable("Analysis", "Enabled", "Tasks", "MC", "Data", "Expected output").AlignRight(2)
	for _, d := range descriptors {
		tbl.AddRow(
			d.Name,
			yesNo(d.Enabled),
			strconv.Itoa(len(d.Tasks)),
			yesNo(hasConfig(d, catalog.VariantMC)),
			yesNo(hasConfig(d, catalog.VariantData)),
			strings.Join(d.ExpectedOutput, ", "),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
	return nil
}

func showAnalysis(cmd *cobra.Command, cat *catalog.Catalog, name string) error {
	d, ok, err := cat.Get(name)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError(
			apperrors.CodeValidationInput,
			fmt.Sprintf("Analysis %s is not in the catalog", name),
			"Catalog lookup").
			WithContext("catalog", cat.Path()).
			WithTroubleshooting("Run 'anaflow list' to see the available analyses")
	}

	tbl := display.NewTable("#", "Task").AlignRight(0)
	for i, task := range d.Tasks {
		tbl.AddRow(strconv.Itoa(i+1), task)
	}

	box := display.NewBox(display.KindInfo, d.Name).
		AddField("Enabled", yesNo(d.Enabled))
	for _, v := range []catalog.Variant{catalog.VariantData, catalog.VariantMC} {
		locator, found := d.ConfigFor(v)
		if !found {
			locator = "-"
		}
		box.AddField("Config ("+string(v)+")", locator)
	}
	box.AddField("Expected output", strings.Join(d.ExpectedOutput, ", "))

	fmt.Fprintln(cmd.OutOrStdout(), box.Render())
	fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
	return nil
}

func hasConfig(d catalog.Descriptor, v catalog.Variant) bool {
	_, ok := d.ConfigFor(v)
	return ok
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
