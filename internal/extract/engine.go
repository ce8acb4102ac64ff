package extract

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Engine runs declarative extraction over documents. It holds the ordered
// institution configs and a logger; it carries no per-document state, so
// one engine may serve concurrent extractions.
type Engine struct {
	configs []*Config
	log     *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger. Without it the engine logs nowhere.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds an engine over the given institution configs. Config order
// is classification order.
func New(configs []*Config, opts ...Option) *Engine {
	e := &Engine{
		configs: configs,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classification is the outcome of document classification: the owning
// institution, the governing document type, and the populated
// document-scope context.
type Classification struct {
	Config  *Config
	Type    *DocumentType
	Context *Context
}

// Classify determines which institution and document type govern the
// document, then runs the type's context extraction. Classification is
// pure: the same text always classifies the same way.
func (e *Engine) Classify(doc *Document) (*Classification, error) {
	for _, cfg := range e.configs {
		if !cfg.matches(doc.Text) {
			continue
		}
		for _, dt := range cfg.Types {
			if !dt.Marker.MatchString(doc.Text) {
				continue
			}
			ctx := NewContext()
			if err := dt.applyContext(ctx, doc.Text); err != nil {
				return nil, errors.Wrapf(err, "document %s: context extraction", doc.Source)
			}
			return &Classification{Config: cfg, Type: dt, Context: ctx}, nil
		}
	}
	return nil, errors.Wrapf(ErrUnrecognizedDocument, "document %s", doc.Source)
}

// Extract converts one document into its ordered item sequence. Document
// level failures (unrecognized type, missing required context) return an
// error and no items; block-level failures become failure items and
// extraction continues with the remaining blocks.
func (e *Engine) Extract(doc *Document) ([]*Item, error) {
	cls, err := e.Classify(doc)
	if err != nil {
		return nil, err
	}
	e.log.Debugw("classified document",
		"source", doc.Source, "institution", cls.Config.Name)

	for _, key := range cls.Type.requiredContext() {
		if _, ok := cls.Context.Get(key); !ok {
			return nil, errors.Wrapf(ErrMissingContext,
				"document %s: key %q", doc.Source, key)
		}
	}

	lines := strings.Split(doc.Text, "\n")

	type discovered struct {
		def   *BlockDef
		order int
		block *Block
	}
	var found []discovered
	for i, def := range cls.Type.Blocks {
		for _, blk := range segment(lines, def) {
			found = append(found, discovered{def: def, order: i, block: blk})
		}
	}
	// Items follow block discovery order across all definitions; ties on
	// the same start line fall back to definition order.
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].block.StartLine != found[j].block.StartLine {
			return found[i].block.StartLine < found[j].block.StartLine
		}
		return found[i].order < found[j].order
	})

	items := make([]*Item, 0, len(found))
	for _, d := range found {
		item := d.def.Build.Build(d.block, cls.Context.Child())
		if item.Failed() {
			e.log.Debugw("block failed",
				"source", doc.Source, "line", d.block.StartLine, "err", item.Err)
		}
		items = append(items, item)
	}
	e.log.Infow("extracted document",
		"source", doc.Source, "institution", cls.Config.Name, "items", len(items))
	return items, nil
}
