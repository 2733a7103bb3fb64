package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/recovery"
	"github.com/wudi/pdfbridge/scanner"
	"github.com/wudi/pdfbridge/security"
	"github.com/wudi/pdfbridge/xref"
)

// Config controls high-level PDF parsing (xref resolution + object loading).
type Config struct {
	Recovery recovery.Strategy
	XRef     xref.ResolverConfig
	Limits   security.Limits
	Cache    Cache
	Password string
	// Lazy defers object loading: only the trailer is read up front and
	// the remaining objects are listed in Document.Pending.
	Lazy bool
}

// DocumentParser builds a raw.Document using xref tables/streams and the object loader.
type DocumentParser struct {
	cfg Config
}

func NewDocumentParser(cfg Config) *DocumentParser {
	if cfg.Limits == (security.Limits{}) {
		cfg.Limits = security.DefaultLimits()
	}
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.Default()
	}
	if cfg.XRef.Recovery == nil {
		cfg.XRef.Recovery = cfg.Recovery
	}
	if cfg.XRef.MaxXRefDepth == 0 {
		cfg.XRef.MaxXRefDepth = cfg.Limits.MaxXRefDepth
	}
	return &DocumentParser{cfg: cfg}
}

// SetPassword updates the password for decryption when parsing encrypted PDFs.
func (p *DocumentParser) SetPassword(pwd string) {
	p.cfg.Password = pwd
}

// Protection is the authenticated security state of a parsed document.
type Protection struct {
	Dict    *raw.DictObj
	Handler security.Handler
}

func (p *DocumentParser) Parse(ctx context.Context, r io.ReaderAt) (*raw.Document, error) {
	doc, _, err := p.ParseProtected(ctx, r)
	return doc, err
}

// ParseProtected is Parse that also returns the security handler of an
// encrypted document, or nil for a plain one.
func (p *DocumentParser) ParseProtected(ctx context.Context, r io.ReaderAt) (*raw.Document, *Protection, error) {
	data := scanner.ReadAll(r)
	src := bytes.NewReader(data)
	resolver := xref.NewResolver(p.cfg.XRef)
	table, err := resolver.Resolve(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve xref: %w", err)
	}
	trailer := table.Trailer()

	sec, encDict, encNum, err := p.selectSecurity(ctx, src, table, trailer)
	if err != nil {
		return nil, nil, err
	}

	builder := (&ObjectLoaderBuilder{}).
		WithReader(src).
		WithXRef(table).
		WithSecurity(sec).
		WithLimits(p.cfg.Limits).
		WithCache(p.cfg.Cache).
		WithRecovery(p.cfg.Recovery)
	if encNum > 0 {
		builder.WithoutDecryption(encNum)
	}
	loader, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}

	doc := &raw.Document{
		Objects:    make(map[raw.ObjectRef]raw.Object),
		Trailer:    trailer,
		Version:    detectHeaderVersion(data),
		Linearized: resolver.Linearized(),
	}
	var prot *Protection
	if sec.IsEncrypted() {
		info := sec.Info()
		doc.Encryption = &info
		prot = &Protection{Dict: encDict, Handler: sec}
	}

	var refs []raw.ObjectRef
	for _, num := range table.Objects() {
		if num == 0 || num == encNum {
			continue
		}
		gen := 0
		if _, g, ok := table.Lookup(num); ok {
			gen = g
		}
		refs = append(refs, raw.ObjectRef{Num: num, Gen: gen})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })

	if p.cfg.Lazy {
		doc.Lazy = loader
		doc.Pending = refs
		return doc, prot, nil
	}
	for _, ref := range refs {
		obj, err := loader.Load(ctx, ref)
		if err != nil {
			return nil, nil, fmt.Errorf("load object %d: %w", ref.Num, err)
		}
		if isXRefStream(obj) {
			continue
		}
		doc.Objects[ref] = obj
	}
	return doc, prot, nil
}

// selectSecurity builds and authenticates the handler named by /Encrypt and
// returns the object number of the encryption dictionary, if indirect.
func (p *DocumentParser) selectSecurity(ctx context.Context, r io.ReaderAt, table xref.Table, trailer *raw.DictObj) (security.Handler, *raw.DictObj, int, error) {
	encObj, ok := trailer.Lookup("Encrypt")
	if !ok {
		return security.NoopHandler(), nil, 0, nil
	}
	var encDict *raw.DictObj
	encNum := 0
	switch v := encObj.(type) {
	case *raw.DictObj:
		encDict = v
	case raw.RefObj:
		encNum = v.R.Num
		loader, err := (&ObjectLoaderBuilder{}).WithReader(r).WithXRef(table).WithLimits(p.cfg.Limits).
			WithRecovery(recovery.NewStrictStrategy()).Build()
		if err != nil {
			return nil, nil, 0, err
		}
		obj, err := loader.Load(ctx, v.R)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("load encryption dictionary: %w", err)
		}
		encDict, _ = obj.(*raw.DictObj)
	}
	if encDict == nil {
		return nil, nil, 0, fmt.Errorf("malformed /Encrypt entry")
	}
	handler, err := (&security.HandlerBuilder{}).WithEncryptDict(encDict).WithTrailer(trailer).Build()
	if err != nil {
		return nil, nil, 0, err
	}
	if err := handler.Authenticate(p.cfg.Password); err != nil {
		return nil, nil, 0, fmt.Errorf("authenticate: %w", err)
	}
	return handler, encDict, encNum, nil
}

func detectHeaderVersion(data []byte) string {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return ""
	}
	rest := head[idx+5:]
	end := 0
	for end < len(rest) && (rest[end] == '.' || (rest[end] >= '0' && rest[end] <= '9')) {
		end++
	}
	return string(rest[:end])
}
