// Package parser turns harness YAML into a validated model.HarnessDocument.
//
// A harness file is a superset of the WireViz input format: connectors,
// cables and connections are read the way WireViz reads them, while
// metadata, parts, accessories and connection_info carry the extra data
// needed for BOMs and wiring tables.
package parser

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger routes parse diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSourcePath records the file name used in error messages.
func WithSourcePath(path string) Option {
	return func(p *Parser) { p.path = path }
}

// Parser holds the state of a single parse. It is not safe for concurrent
// use; create one per document.
type Parser struct {
	logger *zap.Logger
	path   string

	parts      map[string]*model.Part
	cables     map[string]*model.Cable
	accessoryN int
}

// New returns a Parser with a no-op logger.
func New(opts ...Option) *Parser {
	p := &Parser{logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ParseFile loads path and parses it.
func ParseFile(path string, opts ...Option) (*model.HarnessDocument, error) {
	root, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(append([]Option{WithSourcePath(path)}, opts...)...).Parse(root)
}

// ParseBytes decodes YAML data and parses it.
func ParseBytes(data []byte, opts ...Option) (*model.HarnessDocument, error) {
	p := New(opts...)
	root, err := Decode(data)
	if err != nil {
		return nil, p.wrap("load", err)
	}
	return p.Parse(root)
}

// Parse builds a document from a decoded YAML mapping. Sections are read in
// dependency order: metadata, parts, connectors, cables, connections,
// accessories. The first entity that fails validation stops the parse.
func (p *Parser) Parse(root *Map) (*model.HarnessDocument, error) {
	p.parts = make(map[string]*model.Part)
	p.cables = make(map[string]*model.Cable)
	p.accessoryN = 0

	metaRaw, ok := root.Get("metadata")
	if !ok {
		return nil, &ParserError{
			Message: "missing required 'metadata' section",
			Path:    p.path,
			Err:     fmt.Errorf("%w: metadata", ErrMissingSection),
		}
	}
	meta, err := parseMetadata(metaRaw)
	if err != nil {
		return nil, p.wrap("metadata", err)
	}
	log := p.logger.With(zap.String("harness", meta.ID))

	parts, err := p.parseParts(root)
	if err != nil {
		return nil, p.wrap("parts", err)
	}
	connectors, err := p.parseConnectors(root)
	if err != nil {
		return nil, p.wrap("connectors", err)
	}
	cables, err := p.parseCables(root)
	if err != nil {
		return nil, p.wrap("cables", err)
	}

	source := selectConnectionSource(root)
	if root.Has("connection_info") && root.Has("connections") {
		log.Debug("connection_info present, ignoring connections for wiring data")
	}
	connections, err := source.derive(p.cables)
	if err != nil {
		return nil, p.wrap(string(source.kind()), err)
	}

	accessories, err := p.parseAccessories(root)
	if err != nil {
		return nil, p.wrap("accessories", err)
	}
	groups, err := p.parseConnectionGroups(root)
	if err != nil {
		return nil, p.wrap("connection_groups", err)
	}
	splices, err := p.parseSplices(root)
	if err != nil {
		return nil, p.wrap("splices", err)
	}

	var bomExtra []map[string]any
	for _, v := range getList(root, "bom_extra") {
		if m, ok := v.(*Map); ok {
			bomExtra = append(bomExtra, m.plain())
		}
	}

	doc, err := model.NewHarnessDocument(model.HarnessDocument{
		Metadata:         *meta,
		Parts:            parts,
		Connectors:       connectors,
		Cables:           cables,
		Connections:      connections,
		Accessories:      accessories,
		ConnectionGroups: groups,
		Splices:          splices,
		Notes:            getStringOr(root, "notes", ""),
		BOMExtra:         bomExtra,
		ConnectionSource: source.kind(),
	})
	if err != nil {
		return nil, p.wrap("document", err)
	}

	log.Info("parsed harness",
		zap.Int("parts", len(parts)),
		zap.Int("connectors", len(connectors)),
		zap.Int("cables", len(cables)),
		zap.Int("connections", len(connections)),
		zap.Int("accessories", len(accessories)),
		zap.String("connectionSource", string(source.kind())),
	)
	return doc, nil
}

// wrap converts any error into a *ParserError carrying the source path.
func (p *Parser) wrap(section string, err error) error {
	var perr *ParserError
	if errors.As(err, &perr) {
		if perr.Path == "" {
			perr.Path = p.path
		}
		return perr
	}

	var rie *model.ReferentialIntegrityError
	if errors.As(err, &rie) {
		return &ParserError{Message: "invalid connection references", Path: p.path, Details: rie.Violations, Err: err}
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &ParserError{
			Message: section + ": validation failed",
			Path:    p.path,
			Details: ve.Details(),
			Err:     err,
		}
	}
	return &ParserError{Message: section + ": " + err.Error(), Path: p.path, Err: err}
}
