package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/rmera/ligpatch/internal/errors"
)

// envPrefix is the prefix of environment overrides: system.index is read
// from LIGPATCH_SYSTEM_INDEX.
const envPrefix = "LIGPATCH"

// keys known to viper. AutomaticEnv only reaches keys viper already knows
// about, so every key is bound explicitly.
var keys = []string{
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"backup_suffix",
	"system.coordinates", "system.topology", "system.index", "system.parameter_dir",
	"system.restraint_pattern", "system.first_stage", "system.last_stage",
	"ligand.structure", "ligand.metadata", "ligand.parameter_dir", "ligand.parameter_ext",
	"ligand.generic_parameter_files", "ligand.residue_keys",
	"topology.water_include",
	"restraints.flag", "restraints.force_constant_flag", "restraints.force_constant",
	"index.solute_group", "index.update",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		// BindEnv only fails when given no key.
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at path, if path is not empty, applies LIGPATCH_*
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "config: failed to read %q", path)
		}
	}
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "config: failed to unmarshal configuration")
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
