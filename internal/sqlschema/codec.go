package sqlschema

import (
	"encoding/json"
	"os"

	"github.com/soumikc/driftline/internal/errs"
)

// ReadFile loads a catalog from a JSON schema file, the on-disk format used
// for desired-state catalogs.
func ReadFile(path string) (*Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "schema file does not exist", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read schema file", err)
	}

	schema := &Schema{}
	if err := json.Unmarshal(content, schema); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse schema file", err)
	}
	return schema, nil
}

// WriteFile saves a catalog as an indented JSON schema file.
func WriteFile(path string, schema *Schema) error {
	content, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "failed to encode schema", err)
	}
	if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "failed to write schema file", err)
	}
	return nil
}
