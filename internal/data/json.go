package data

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"sku-pricing/internal/model"
)

// PanelFile is the JSON form of a joined panel.
type PanelFile struct {
	Rows model.Panel `json:"rows"`
}

func LoadPanelJSON(path string) (model.Panel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read panel %s", path)
	}
	var f PanelFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "parse panel %s", path)
	}
	if len(f.Rows) == 0 {
		return nil, eris.Wrapf(ErrNoRows, "panel %s", path)
	}
	return f.Rows.Normalized(), nil
}

// SavePanelJSON writes a panel in the format LoadPanelJSON reads.
func SavePanelJSON(panel model.Panel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrap(err, "create panel directory")
	}
	raw, err := json.MarshalIndent(PanelFile{Rows: panel}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal panel")
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return eris.Wrapf(err, "write panel %s", path)
	}
	return nil
}
