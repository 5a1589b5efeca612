package annotations

import (
	"go/ast"
	"go/token"
)

// ExtractFromComments parses every //meta:: line of a doc comment group.
// Lines without the prefix are ignored; errors from all lines are collected.
func (p *Parser) ExtractFromComments(fset *token.FileSet, doc *ast.CommentGroup, target string) ([]*ParsedAnnotation, error) {
	if doc == nil {
		return nil, nil
	}

	var result []*ParsedAnnotation
	errs := &ErrorList{}
	for _, comment := range doc.List {
		if !IsAnnotation(comment.Text) {
			continue
		}
		pos := fset.Position(comment.Slash)
		loc := SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}

		parsed, err := p.ParseComment(comment.Text, loc)
		if err != nil {
			errs.Add(err)
			continue
		}
		for _, a := range parsed {
			a.Target = target
		}
		result = append(result, parsed...)
	}
	return result, errs.Err()
}
