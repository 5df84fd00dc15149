// Package config holds the settings that drive a ligpatch run: the file
// layout of the system and ligand directories, the anchors used to patch the
// topology, the restraint flags, and logging.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmera/ligpatch/internal/errors"
	"github.com/rmera/ligpatch/internal/logging"
)

// Config is the root configuration object.
type Config struct {
	Log logging.LogConfig `mapstructure:"log" yaml:"log"`

	// BackupSuffix is appended to a file name to form its backup.
	BackupSuffix string `mapstructure:"backup_suffix" yaml:"backup_suffix"`

	System     SystemLayout     `mapstructure:"system" yaml:"system"`
	Ligand     LigandLayout     `mapstructure:"ligand" yaml:"ligand"`
	Topology   TopologyConfig   `mapstructure:"topology" yaml:"topology"`
	Restraints RestraintsConfig `mapstructure:"restraints" yaml:"restraints"`
	Index      IndexConfig      `mapstructure:"index" yaml:"index"`
}

// SystemLayout gives paths relative to the system directory.
type SystemLayout struct {
	Coordinates string `mapstructure:"coordinates" yaml:"coordinates"`
	Topology    string `mapstructure:"topology" yaml:"topology"`
	Index       string `mapstructure:"index" yaml:"index"`
	// ParameterDir receives the ligand parameter file. Relative to the
	// topology directory, it is also the prefix of the include line.
	ParameterDir string `mapstructure:"parameter_dir" yaml:"parameter_dir"`
	// RestraintPattern is a printf pattern with one %d, the stage number.
	RestraintPattern string `mapstructure:"restraint_pattern" yaml:"restraint_pattern"`
	FirstStage       int    `mapstructure:"first_stage" yaml:"first_stage"`
	LastStage        int    `mapstructure:"last_stage" yaml:"last_stage"`
}

// LigandLayout gives paths relative to the ligand directory.
type LigandLayout struct {
	Structure    string `mapstructure:"structure" yaml:"structure"`
	Metadata     string `mapstructure:"metadata" yaml:"metadata"`
	ParameterDir string `mapstructure:"parameter_dir" yaml:"parameter_dir"`
	// ParameterExt is the extension of force-field parameter files.
	ParameterExt string `mapstructure:"parameter_ext" yaml:"parameter_ext"`
	// GenericParameterFiles are force-field files shipped with every ligand,
	// used only when nothing ligand-specific is present.
	GenericParameterFiles []string `mapstructure:"generic_parameter_files" yaml:"generic_parameter_files"`
	// ResidueKeys are the metadata keys holding the residue name, most
	// preferred first.
	ResidueKeys []string `mapstructure:"residue_keys" yaml:"residue_keys"`
}

type TopologyConfig struct {
	// WaterInclude identifies the water-model include line; the ligand
	// include goes right after the last line containing it.
	WaterInclude string `mapstructure:"water_include" yaml:"water_include"`
}

type RestraintsConfig struct {
	Flag              string  `mapstructure:"flag" yaml:"flag"`
	ForceConstantFlag string  `mapstructure:"force_constant_flag" yaml:"force_constant_flag"`
	ForceConstant     float64 `mapstructure:"force_constant" yaml:"force_constant"`
}

type IndexConfig struct {
	SoluteGroup string `mapstructure:"solute_group" yaml:"solute_group"`
	// Update turns on rewriting of the index file. Off, only a notice is
	// printed.
	Update bool `mapstructure:"update" yaml:"update"`
}

// Defines returns the two restraint flags, as they appear on a define line.
func (r RestraintsConfig) Defines() []string {
	fc := strconv.FormatFloat(r.ForceConstant, 'f', -1, 64)
	if !strings.ContainsAny(fc, ".e") {
		fc += ".0"
	}
	return []string{r.Flag, r.ForceConstantFlag + "=" + fc}
}

// Validate checks the values that would make a run meaningless.
func (c *Config) Validate() error {
	var problems []string
	if c.BackupSuffix == "" {
		problems = append(problems, "backup_suffix must not be empty")
	}
	if c.System.Coordinates == "" || c.System.Topology == "" || c.System.Index == "" {
		problems = append(problems, "system coordinates, topology and index paths are required")
	}
	if strings.Count(c.System.RestraintPattern, "%d") != 1 {
		problems = append(problems, "system.restraint_pattern must contain exactly one %d")
	}
	if c.System.FirstStage < 0 || c.System.LastStage < c.System.FirstStage {
		problems = append(problems, fmt.Sprintf("invalid stage range %d..%d", c.System.FirstStage, c.System.LastStage))
	}
	if c.Ligand.Structure == "" || c.Ligand.Metadata == "" {
		problems = append(problems, "ligand structure and metadata paths are required")
	}
	if !strings.HasPrefix(c.Ligand.ParameterExt, ".") {
		problems = append(problems, "ligand.parameter_ext must start with a dot")
	}
	if len(c.Ligand.ResidueKeys) == 0 {
		problems = append(problems, "ligand.residue_keys must not be empty")
	}
	if c.Topology.WaterInclude == "" {
		problems = append(problems, "topology.water_include must not be empty")
	}
	if c.Restraints.Flag == "" || c.Restraints.ForceConstantFlag == "" {
		problems = append(problems, "restraint flags must not be empty")
	}
	if c.Restraints.ForceConstant <= 0 {
		problems = append(problems, "restraints.force_constant must be positive")
	}
	if c.Index.SoluteGroup == "" {
		problems = append(problems, "index.solute_group must not be empty")
	}
	if len(problems) > 0 {
		return errors.New(errors.CodeInvalidConfig, "invalid configuration").WithDetail(strings.Join(problems, "; "))
	}
	return nil
}
