package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ravencare/ravencare/catalog"
	"github.com/ravencare/ravencare/errors"
)

// DoctorsCmd lists the loaded doctor catalog.
var DoctorsCmd = &cobra.Command{
	Use:   "doctors",
	Short: "List the doctor catalog",
	Long:  `Show every doctor loaded from the roster directory, grouped by specialty.`,
	RunE:  listDoctors,
}

var (
	doctorsConfigPath string
	doctorsSpecialty  string
)

func init() {
	DoctorsCmd.Flags().StringVar(&doctorsConfigPath, "config", "", "Config file path (overrides discovery)")
	DoctorsCmd.Flags().StringVar(&doctorsSpecialty, "specialty", "", "Show a single specialty")
}

func listDoctors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(doctorsConfigPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat := catalog.Load(cfg.Data.DoctorsDir, cfg.Data.Specialties)
	if cat.Len() == 0 {
		return errors.Newf("no specialties loaded from %q", cfg.Data.DoctorsDir)
	}

	keys := cat.Specialties()
	if doctorsSpecialty != "" {
		_, key, ok := cat.Resolve(doctorsSpecialty)
		if !ok {
			return errors.NewNotFoundError("specialty %q not in catalog", doctorsSpecialty)
		}
		keys = []string{key}
	}

	for _, key := range keys {
		dept, ok := cat.Department(key)
		if !ok {
			continue
		}

		pterm.DefaultSection.Printf("%s (%d doctors)", dept.Specialty, len(dept.Doctors))

		rows := pterm.TableData{
			{"Name", "Subspecialty", "Rating", "Experience", "Languages", "Slots"},
		}
		for _, doc := range dept.Doctors {
			rows = append(rows, []string{
				doc.Name,
				doc.SubSpecialization,
				fmt.Sprintf("%.1f", doc.PatientRating),
				fmt.Sprintf("%d yrs", doc.ExperienceYears),
				strings.Join(doc.LanguagesSpoken, ", "),
				strings.Join(doc.Slots, ", "),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	return nil
}
