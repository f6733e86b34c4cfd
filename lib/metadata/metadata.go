package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
	"github.com/ValentinKolb/kvlayout/lib/metadata/registry"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("metadata")

// Version is the version of the document format.
const Version = "1"

// Describer is implemented by everything that can describe its storage layout
// starting at the cursor (see storage.StorageLayout).
type Describer interface {
	Layout(ptr *key.Ptr) layout.Layout
}

// Document is the portable description of a storage tree: the compacted layout and
// the types it references.
type Document struct {
	Version string                  `json:"version"`
	Storage layout.Layout           `json:"storage"`
	Types   []registry.PortableType `json:"types"`
}

// Generate describes root as stored at rootKey and compacts the result.
func Generate(root Describer, rootKey key.Key) (*Document, error) {
	if root == nil {
		return nil, errors.New("no storage root given")
	}
	l := root.Layout(key.NewPtr(rootKey))
	if l == nil {
		return nil, fmt.Errorf("storage root %T has no layout", root)
	}
	return Compact(l), nil
}

// Compact registers all types referenced by l and returns the document. l itself is
// not modified.
func Compact(l layout.Layout) *Document {
	reg := registry.New()
	portable := l.IntoPortable(reg)
	log.Debugf("compacted layout with %d types", reg.Len())
	return &Document{Version: Version, Storage: portable, Types: reg.Types()}
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
