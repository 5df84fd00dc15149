package config

// Defaults match the layout written by the CHARMM-GUI membrane builder and
// ligand reader.
const (
	DefaultBackupSuffix = ".backup"

	DefaultCoordinates      = "gromacs/step5_input.gro"
	DefaultTopology         = "gromacs/topol.top"
	DefaultIndex            = "gromacs/index.ndx"
	DefaultSystemParamDir   = "toppar"
	DefaultRestraintPattern = "gromacs/step6.%d_equilibration.mdp"
	DefaultFirstStage       = 1
	DefaultLastStage        = 9

	DefaultLigandStructure = "ligandrm.pdb"
	DefaultLigandMetadata  = "ligandrm.yml"
	DefaultLigandParamDir  = "gromacs"
	DefaultParameterExt    = ".itp"

	DefaultWaterInclude = "TIP3.itp"

	DefaultRestraintFlag     = "-DPOSRES_LIGAND"
	DefaultForceConstantFlag = "-DPOSRES_FC_LIGAND"
	DefaultForceConstant     = 1000.0

	DefaultSoluteGroup = "SOLU"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

func defaultGenericParameterFiles() []string {
	return []string{"charmm36.itp", "forcefield.itp", "atomtypes.itp"}
}

// newresn is written by the ligand modeler when the residue was renamed.
func defaultResidueKeys() []string {
	return []string{"newresn", "orgresn"}
}

// NewDefaultConfig returns a Config with every field at its default.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills the zero-valued fields of cfg. Fields already set are
// left alone. FirstStage is only defaulted together with LastStage, since 0
// is a legal first stage.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.BackupSuffix == "" {
		cfg.BackupSuffix = DefaultBackupSuffix
	}

	s := &cfg.System
	if s.Coordinates == "" {
		s.Coordinates = DefaultCoordinates
	}
	if s.Topology == "" {
		s.Topology = DefaultTopology
	}
	if s.Index == "" {
		s.Index = DefaultIndex
	}
	if s.ParameterDir == "" {
		s.ParameterDir = DefaultSystemParamDir
	}
	if s.RestraintPattern == "" {
		s.RestraintPattern = DefaultRestraintPattern
	}
	if s.FirstStage == 0 && s.LastStage == 0 {
		s.FirstStage = DefaultFirstStage
		s.LastStage = DefaultLastStage
	}

	l := &cfg.Ligand
	if l.Structure == "" {
		l.Structure = DefaultLigandStructure
	}
	if l.Metadata == "" {
		l.Metadata = DefaultLigandMetadata
	}
	if l.ParameterDir == "" {
		l.ParameterDir = DefaultLigandParamDir
	}
	if l.ParameterExt == "" {
		l.ParameterExt = DefaultParameterExt
	}
	if l.GenericParameterFiles == nil {
		l.GenericParameterFiles = defaultGenericParameterFiles()
	}
	if len(l.ResidueKeys) == 0 {
		l.ResidueKeys = defaultResidueKeys()
	}

	if cfg.Topology.WaterInclude == "" {
		cfg.Topology.WaterInclude = DefaultWaterInclude
	}

	r := &cfg.Restraints
	if r.Flag == "" {
		r.Flag = DefaultRestraintFlag
	}
	if r.ForceConstantFlag == "" {
		r.ForceConstantFlag = DefaultForceConstantFlag
	}
	if r.ForceConstant == 0 {
		r.ForceConstant = DefaultForceConstant
	}

	if cfg.Index.SoluteGroup == "" {
		cfg.Index.SoluteGroup = DefaultSoluteGroup
	}
}
