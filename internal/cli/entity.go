package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coasterscan/internal/model"
)

var (
	entityName         string
	entityWebsite      string
	entityCountry      string
	entityNotes        string
	entityParkID       string
	entityManufacturer string
	entityYear         int
	entityMonth        int
	entityDay          int
	entityLatitude     float64
	entityLongitude    float64
	entityHeight       float64
	entitySpeed        float64
	entityStatus       string
	entityJSON         bool
	entitySet          []string
)

// entityCmd represents the entity command
var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage catalog entities (parks, manufacturers, coasters)",
}

var entityAddCmd = &cobra.Command{
	Use:   "add <park|manufacturer|coaster>",
	Short: "Add an entity to the catalog",
	Example: `  coasterscan entity add park --name Efteling --website https://www.efteling.com
  coasterscan entity add manufacturer --name Vekoma --website https://www.vekoma.com --country NL`,
	Args: cobra.ExactArgs(1),
	RunE: runEntityAdd,
}

var entityEditCmd = &cobra.Command{
	Use:   "edit <park|manufacturer|coaster> <id>",
	Short: "Change fields of a stored entity directly",
	Long: `Edit writes field values straight to the catalog record, without a
proposal. Values are typed per field; "null" clears an optional field.
System-managed fields (id, created_at, updated_at) cannot be edited.`,
	Example: `  coasterscan entity edit park 0b6c... --set opening_year=1952 --set opening_month=5
  coasterscan entity edit coaster 7d2e... --set height_m=45.5 --set status=operating
  coasterscan entity edit manufacturer 4f1d... --set notes=null`,
	Args: cobra.ExactArgs(2),
	RunE: runEntityEdit,
}

var entityListCmd = &cobra.Command{
	Use:   "list <park|manufacturer|coaster>",
	Short: "List entities of a kind",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntityList,
}

var entityShowCmd = &cobra.Command{
	Use:   "show <park|manufacturer|coaster> <id>",
	Short: "Show one entity as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runEntityShow,
}

func init() {
	rootCmd.AddCommand(entityCmd)
	entityCmd.AddCommand(entityAddCmd, entityEditCmd, entityListCmd, entityShowCmd)

	addEntityFlags(entityAddCmd)
	_ = entityAddCmd.MarkFlagRequired("name")

	entityEditCmd.Flags().StringArrayVar(&entitySet, "set", nil, "field=value to write (repeatable)")
	_ = entityEditCmd.MarkFlagRequired("set")

	entityListCmd.Flags().BoolVar(&entityJSON, "json", false, "print JSON instead of a table")
}

// addEntityFlags registers the entity attribute flags of entity add
func addEntityFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entityName, "name", "", "entity name (required)")
	cmd.Flags().StringVar(&entityWebsite, "website", "", "official website URL")
	cmd.Flags().StringVar(&entityCountry, "country", "", "ISO 3166-1 alpha-2 country code or country name")
	cmd.Flags().StringVar(&entityNotes, "notes", "", "free-text notes")
	cmd.Flags().StringVar(&entityParkID, "park-id", "", "park id (coasters)")
	cmd.Flags().StringVar(&entityManufacturer, "manufacturer-id", "", "manufacturer id (coasters)")
	cmd.Flags().IntVar(&entityYear, "opening-year", 0, "opening year (parks, coasters)")
	cmd.Flags().IntVar(&entityMonth, "opening-month", 0, "opening month 1-12 (parks)")
	cmd.Flags().IntVar(&entityDay, "opening-day", 0, "opening day 1-31 (parks)")
	cmd.Flags().Float64Var(&entityLatitude, "lat", 0, "latitude (parks)")
	cmd.Flags().Float64Var(&entityLongitude, "lon", 0, "longitude (parks)")
	cmd.Flags().Float64Var(&entityHeight, "height", 0, "height in meters (coasters)")
	cmd.Flags().Float64Var(&entitySpeed, "speed", 0, "top speed in km/h (coasters)")
	cmd.Flags().StringVar(&entityStatus, "status", "", "operating status (coasters)")
}

func runEntityAdd(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}

	fields, err := addFields(cmd, kind)
	if err != nil {
		return err
	}
	e := &model.Entity{Kind: kind, Name: entityName}
	if _, err := e.Apply(fields); err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if err := a.store.CreateEntity(context.Background(), e); err != nil {
		return fmt.Errorf("add %s: %w", kind, err)
	}
	fmt.Printf("✓ Added %s %s (%s)\n", kind, e.Name, e.ID)
	return nil
}

// addFields collects the optional flags given to entity add as typed field
// values. A flag that does not apply to the kind is an error.
func addFields(cmd *cobra.Command, kind model.Kind) (model.FieldMap, error) {
	flags := []struct {
		flag  string
		field string
		value string
	}{
		{"website", "website_url", entityWebsite},
		{"country", "country_code", entityCountry},
		{"notes", "notes", entityNotes},
		{"park-id", "park_id", entityParkID},
		{"manufacturer-id", "manufacturer_id", entityManufacturer},
		{"opening-year", "opening_year", strconv.Itoa(entityYear)},
		{"opening-month", "opening_month", strconv.Itoa(entityMonth)},
		{"opening-day", "opening_day", strconv.Itoa(entityDay)},
		{"lat", "latitude", strconv.FormatFloat(entityLatitude, 'f', -1, 64)},
		{"lon", "longitude", strconv.FormatFloat(entityLongitude, 'f', -1, 64)},
		{"height", "height_m", strconv.FormatFloat(entityHeight, 'f', -1, 64)},
		{"speed", "speed_kmh", strconv.FormatFloat(entitySpeed, 'f', -1, 64)},
		{"status", "status", entityStatus},
	}

	fields := make(model.FieldMap)
	for _, f := range flags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if !model.HasField(kind, f.field) {
			return nil, fmt.Errorf("--%s does not apply to a %s", f.flag, kind)
		}
		value, err := model.ParseFieldValue(kind, f.field, f.value)
		if err != nil {
			return nil, err
		}
		fields[f.field] = value
	}
	return fields, nil
}

func runEntityEdit(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	fields, err := model.ParseAssignments(kind, entitySet)
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	before, err := a.store.GetEntity(context.Background(), kind, args[1])
	if err != nil {
		return err
	}
	current := before.Fields()

	changed, err := a.review.Edit(context.Background(), kind, args[1], fields)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		fmt.Printf("✓ %s %s unchanged\n", kind, args[1])
		return nil
	}
	fmt.Printf("✓ Updated %s %s\n", kind, args[1])
	printChanges(os.Stdout, kind, current, fieldsOf(fields, changed))
	return nil
}

func fieldsOf(fields model.FieldMap, names []string) model.FieldMap {
	out := make(model.FieldMap, len(names))
	for _, n := range names {
		out[n] = fields[n]
	}
	return out
}

func runEntityList(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	entities, err := a.store.ListEntities(context.Background(), kind)
	if err != nil {
		return err
	}
	if entityJSON {
		return printJSON(os.Stdout, entities)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOUNTRY\tWEBSITE")
	for _, e := range entities {
		country := ""
		if e.CountryCode != nil {
			country = *e.CountryCode
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Name, country, e.Website())
	}
	return w.Flush()
}

func runEntityShow(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	e, err := a.store.GetEntity(context.Background(), kind, args[1])
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, e)
}
