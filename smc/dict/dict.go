// Package dict ingests keys and well-known key types from structured YAML
// sources into a Store.
//
// A document has two optional sections, processed in document order:
//
//	types:
//	  TC0P: sp78
//	keys:
//	  NATJ: {type: "ui8 ", value: "00"}      # hex payload
//	  RPlt: {type: "ch8*", text: "j43"}      # Windows-1252 text
//	  TC0P: {type: sp78, number: 40.5}       # encoded per type
//
// Reserved names and malformed entries are skipped; the rest of the batch
// is still applied.
package dict

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/codec"
)

// MaxDocumentSize bounds the size of a source document (1MB).
const MaxDocumentSize = 1 << 20

//go:embed default_types.yaml
var defaultTypesYAML []byte

// TypeEntry is one well-known type mapping.
type TypeEntry struct {
	Name string
	Type string
}

// Document is a decoded source, entries in document order.
type Document struct {
	Types []TypeEntry
	Keys  []smc.Entry
}

// Result reports what Apply merged.
type Result struct {
	Types int
	Keys  int
}

type keyDecl struct {
	Type   string   `yaml:"type"`
	Value  *string  `yaml:"value"`
	Text   *string  `yaml:"text"`
	Number *float64 `yaml:"number"`
}

type rawDocument struct {
	Types yaml.Node `yaml:"types"`
	Keys  yaml.Node `yaml:"keys"`
}

// Parse decodes a document. Entries whose payload cannot be decoded are
// reported in the returned error, which is non-nil alongside a usable
// Document; a nil Document means the source itself was unreadable.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, types.Wrap(types.ErrKindIO, err, "read key source")
	}
	if len(data) > MaxDocumentSize {
		return nil, types.Errorf(types.ErrKindIO, "key source exceeds %d bytes", MaxDocumentSize)
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, types.Wrap(types.ErrKindIO, err, "decode key source")
	}

	doc := &Document{}
	var errs *multierror.Error

	err = eachPair(&raw.Types, func(name string, node *yaml.Node) error {
		var typ string
		if err := node.Decode(&typ); err != nil {
			return fmt.Errorf("type of %s: %w", name, err)
		}
		doc.Types = append(doc.Types, TypeEntry{Name: name, Type: typ})
		return nil
	})
	errs = multierror.Append(errs, err)

	err = eachPair(&raw.Keys, func(name string, node *yaml.Node) error {
		var decl keyDecl
		if err := node.Decode(&decl); err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
		value, err := decl.payload()
		if err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
		doc.Keys = append(doc.Keys, smc.Entry{Name: name, Type: decl.Type, Value: value})
		return nil
	})
	errs = multierror.Append(errs, err)

	return doc, errs.ErrorOrNil()
}

// eachPair walks a mapping node in document order. A zero node (absent
// section) is empty. Per-pair errors are collected.
func eachPair(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return types.Errorf(types.ErrKindIO, "line %d: expected a mapping", node.Line)
	}
	var errs *multierror.Error
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (k keyDecl) payload() ([]byte, error) {
	set := 0
	for _, ok := range []bool{k.Value != nil, k.Text != nil, k.Number != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, types.Errorf(types.ErrKindCreationFailed, "exactly one of value, text or number is required")
	}

	switch {
	case k.Value != nil:
		return codec.ParseHex(*k.Value)
	case k.Text != nil:
		return codec.EncodeString(*k.Text)
	default:
		t, err := smc.NormalizeType(k.Type)
		if err != nil {
			return nil, err
		}
		return codec.Encode(t, *k.Number)
	}
}

// Apply registers the document's types, then ingests its keys.
func (d *Document) Apply(s *smc.Store) (Result, error) {
	var (
		res  Result
		errs *multierror.Error
	)
	if len(d.Types) > 0 {
		table := make(map[string]string, len(d.Types))
		for _, t := range d.Types {
			table[t.Name] = t.Type
		}
		n, err := s.RegisterDefaultTypes(table)
		res.Types = n
		errs = multierror.Append(errs, err)
	}
	n, err := s.AddKeys(d.Keys)
	res.Keys = n
	errs = multierror.Append(errs, err)
	return res, errs.ErrorOrNil()
}

// Load parses r and applies it to s. Decoding failures of individual
// entries do not stop the remaining entries from being applied.
func Load(s *smc.Store, r io.Reader) (Result, error) {
	doc, perr := Parse(r)
	if doc == nil {
		return Result{}, perr
	}
	res, aerr := doc.Apply(s)
	return res, multierror.Append(perr, aerr).ErrorOrNil()
}

// LoadFile is Load for a file on disk.
func LoadFile(s *smc.Store, path string) (Result, error) {
	doc, perr := ParseFile(path)
	if doc == nil {
		return Result{}, perr
	}
	res, aerr := doc.Apply(s)
	return res, multierror.Append(perr, aerr).ErrorOrNil()
}

// ParseFile is Parse for a file on disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrKindIO, err, "open key source %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// DefaultTypes returns the embedded well-known type table.
func DefaultTypes() map[string]string {
	doc, err := Parse(strings.NewReader(string(defaultTypesYAML)))
	if err != nil {
		panic(fmt.Sprintf("dict: embedded default types are invalid: %v", err))
	}
	out := make(map[string]string, len(doc.Types))
	for _, t := range doc.Types {
		out[t.Name] = t.Type
	}
	return out
}

// RegisterDefaults registers the embedded well-known types with s.
func RegisterDefaults(s *smc.Store) (int, error) {
	return s.RegisterDefaultTypes(DefaultTypes())
}
