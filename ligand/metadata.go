package ligand

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/errors"
)

// ErrNoResidueName is returned when none of the residue-name keys has a value.
var ErrNoResidueName = fmt.Errorf("no residue name in ligand metadata")

// Metadata is the key/value mapping written by the ligand modeler.
type Metadata map[string]interface{}

// ReadMetadata decodes a YAML mapping from r. An empty document gives an
// empty Metadata.
func ReadMetadata(r io.Reader) (Metadata, error) {
	m := make(Metadata)
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, errors.Malformed(err, "can't decode ligand metadata")
	}
	return m, nil
}

// ReadMetadataFile reads the metadata file name, which may be compressed.
func ReadMetadataFile(name string) (Metadata, error) {
	r, err := fileio.Open(name)
	if err != nil {
		return nil, errors.IO(err, "can't open ligand metadata").WithDetail(name)
	}
	defer r.Close()
	m, err := ReadMetadata(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, name)
	}
	return m, nil
}

// String returns the value under key as a trimmed string, or "" if the key
// is absent or null.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// ResidueName returns the value of the first of keys that holds a
// non-empty value.
func (m Metadata) ResidueName(keys []string) (string, error) {
	for _, k := range keys {
		if s := m.String(k); s != "" {
			return s, nil
		}
	}
	return "", errors.Malformed(ErrNoResidueName, "can't name the ligand").
		WithDetail("none of " + strings.Join(keys, ", ") + " is set")
}
