package xref

import (
	"context"
	"errors"
	"io"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/scanner"
)

// repair scans the whole file for "<num> <gen> obj" headers and the last
// trailer dictionary, rebuilding a table from what it finds.
func repair(ctx context.Context, data []byte) (Table, error) {
	s := scanner.NewBytes(data, scanner.Config{})
	entries := make(map[int]entry)
	var lastTrailer *raw.DictObj
	var catalog int

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Skip one byte past unreadable input.
			if serr := s.SeekTo(s.Position() + 1); serr != nil {
				break
			}
			continue
		}

		switch {
		case tok.Type == scanner.TokenNumber && tok.IsInt:
			genTok, err := s.Next()
			if err != nil {
				continue
			}
			if genTok.Type != scanner.TokenNumber || !genTok.IsInt {
				s.SeekTo(genTok.Pos)
				continue
			}
			objTok, err := s.Next()
			if err != nil {
				continue
			}
			if objTok.Type == scanner.TokenKeyword && objTok.Str == "obj" {
				entries[int(tok.Int)] = entry{kind: EntryInUse, offset: tok.Pos, gen: int(genTok.Int)}
				if catalog == 0 && isCatalog(s) {
					catalog = int(tok.Int)
				}
				continue
			}
			// "1 2 0 obj" must still be seen when "1 2" was consumed first.
			s.SeekTo(genTok.Pos)
		case tok.Type == scanner.TokenKeyword && tok.Str == "trailer":
			obj, err := raw.ParseObject(raw.NewTokenReader(s))
			if dict, ok := obj.(*raw.DictObj); err == nil && ok {
				lastTrailer = dict
			}
		}
	}

	if len(entries) == 0 {
		return nil, errors.New("repair failed: no objects found")
	}
	if lastTrailer == nil {
		lastTrailer = raw.Dict()
	}
	maxNum := 0
	for n := range entries {
		if n > maxNum {
			maxNum = n
		}
	}
	lastTrailer.SetKey("Size", raw.NumberInt(int64(maxNum+1)))
	if _, ok := lastTrailer.Lookup("Root"); !ok {
		if catalog == 0 {
			return nil, errors.New("repair failed: no catalog found")
		}
		lastTrailer.SetKey("Root", raw.Ref(catalog, entries[catalog].gen))
	}
	lastTrailer.Delete("Prev")
	lastTrailer.Delete("XRefStm")
	return &table{kind: "repaired", entries: entries, trailer: lastTrailer}, nil
}

// isCatalog peeks at the object body after its header without consuming it.
func isCatalog(s scanner.Scanner) bool {
	pos := s.Position()
	defer s.SeekTo(pos)
	obj, err := raw.ParseObject(raw.NewTokenReader(s))
	if err != nil {
		return false
	}
	d, ok := obj.(*raw.DictObj)
	if !ok {
		return false
	}
	typ, _ := d.NameValue("Type")
	return typ == "Catalog"
}
