package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/service/detect"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// Taxonomy holds CLI flags for the keyword taxonomy override
type Taxonomy struct {
	path string
}

func (x *Taxonomy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "taxonomy-file",
			Usage:       "TOML file overriding the built-in keyword taxonomy",
			Category:    "Detection",
			Sources:     cli.EnvVars("LIFELINE_TAXONOMY_FILE"),
			Destination: &x.path,
		},
	}
}

type taxonomyFile struct {
	Categories []taxonomyCategory `toml:"category"`
}

type taxonomyCategory struct {
	Type       string   `toml:"type"`
	High       []string `toml:"high"`
	Medium     []string `toml:"medium"`
	Contextual []string `toml:"contextual"`
}

// Configure loads the taxonomy file when one is set; (nil, nil) means
// the built-in table applies. File order is preserved, it decides
// tie-breaks between equally scored categories.
func (x *Taxonomy) Configure() ([]detect.Category, error) {
	if x.path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(x.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read taxonomy file", goerr.V("path", x.path))
	}

	var file taxonomyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse taxonomy file", goerr.V("path", x.path))
	}
	if len(file.Categories) == 0 {
		return nil, goerr.New("taxonomy file has no categories", goerr.V("path", x.path))
	}

	categories := make([]detect.Category, 0, len(file.Categories))
	for _, c := range file.Categories {
		crisisType := types.CrisisType(c.Type)
		if !crisisType.IsValid() {
			return nil, goerr.New("invalid crisis type in taxonomy file",
				goerr.V("path", x.path),
				goerr.V("type", c.Type),
			)
		}
		categories = append(categories, detect.Category{
			Type:       crisisType,
			High:       c.High,
			Medium:     c.Medium,
			Contextual: c.Contextual,
		})
	}

	logging.Default().Info("Loaded keyword taxonomy",
		"path", x.path,
		"categories", len(categories),
	)

	return categories, nil
}
