// Package source builds type descriptors from Go source code. Struct types
// marked //meta::object are described along with their exported fields and
// the exported methods declared on them anywhere in the same package.
package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"log/slog"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/toyz/metamodel/internal/annotations"
	"github.com/toyz/metamodel/internal/errors"
	"github.com/toyz/metamodel/internal/utils"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// DefaultExcludes are the file patterns skipped unless the caller replaces them.
// Directories named vendor or testdata, or starting with . or _, are always skipped.
var DefaultExcludes = []string{"**/*_gen.go", "**/zz_generated*.go"}

// Result is the outcome of a scan
type Result struct {
	Table *descriptor.Table
	// Module is the path of the module containing the first scanned directory, if any
	Module   string
	Packages []string
	Files    int
}

// Scanner parses Go files into descriptors
type Scanner struct {
	parser   *annotations.Parser
	fset     *token.FileSet
	excludes []string
	logger   *slog.Logger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithExcludes replaces the doublestar patterns of paths to skip
func WithExcludes(patterns ...string) Option {
	return func(s *Scanner) { s.excludes = patterns }
}

// WithLogger sets the scanner logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// NewScanner creates a scanner validating annotations against the built-in schemas
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		parser:   annotations.NewParser(annotations.DefaultRegistry()),
		fset:     token.NewFileSet(),
		excludes: DefaultExcludes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileSet returns the file set positions are reported against
func (s *Scanner) FileSet() *token.FileSet { return s.fset }

// Scan walks dirs recursively. A trailing "/..." is accepted and ignored.
// Every problem is collected; the returned table holds the types that were
// described without errors.
func (s *Scanner) Scan(dirs ...string) (*Result, error) {
	res := &Result{Table: descriptor.NewTable()}
	errs := &errors.MultipleErrors{}

	for i, dir := range dirs {
		dir = strings.TrimSuffix(filepath.ToSlash(dir), "/...")
		if dir == "" {
			dir = "."
		}
		root, err := filepath.Abs(dir)
		if err != nil {
			errs.Add(errors.WrapFileSystemError("resolve", dir, err))
			continue
		}
		if i == 0 {
			if mod, err := utils.FindModule(root); err == nil {
				res.Module = mod.Path
			}
		}

		packages, err := s.collect(root)
		if err != nil {
			errs.Add(errors.WrapFileSystemError("walk", dir, err))
			continue
		}
		for _, pkgDir := range sortedKeys(packages) {
			s.scanPackage(pkgDir, packages[pkgDir], res, errs)
		}
	}

	sort.Strings(res.Packages)
	return res, errs.Err()
}

// collect groups the non-test Go files under root by directory
func (s *Scanner) collect(root string) (map[string][]string, error) {
	packages := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") || s.excluded(rel) {
			return nil
		}
		dir := filepath.Dir(path)
		packages[dir] = append(packages[dir], path)
		return nil
	})
	return packages, err
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) scanPackage(dir string, paths []string, res *Result, errs *errors.MultipleErrors) {
	files := make([]*ast.File, 0, len(paths))
	for _, path := range paths {
		f, err := parser.ParseFile(s.fset, path, nil, parser.ParseComments)
		if err != nil {
			errs.Add(errors.WrapScanError(errors.SourceLocation{File: path}, err))
			continue
		}
		files = append(files, f)
	}
	res.Files += len(files)

	described, err := s.describe(files)
	if merr := errors.FromAnnotations(err); merr != nil {
		errs.Errors = append(errs.Errors, merr.Errors...)
	}
	if len(described) == 0 {
		return
	}
	res.Packages = append(res.Packages, dir)
	for _, typ := range described {
		if err := res.Table.Register(typ); err != nil {
			errs.Add(errors.Wrap(errors.ScanErrorCode, "failed to register type", err).WithContext("directory", dir))
		}
	}
	s.logger.Debug("scanned package", "directory", dir, "types", len(described))
}

// ScanSource describes the object types of a single file
func (s *Scanner) ScanSource(filename string, src any) ([]*descriptor.Type, error) {
	f, err := parser.ParseFile(s.fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.WrapScanError(errors.SourceLocation{File: filename}, err)
	}
	described, err := s.describe([]*ast.File{f})
	if merr := errors.FromAnnotations(err); merr != nil {
		return described, merr
	}
	return described, nil
}

// describe builds descriptors for the files of one package. Files of
// different packages are described under their own package names.
func (s *Scanner) describe(files []*ast.File) ([]*descriptor.Type, error) {
	errs := &annotations.ErrorList{}
	objects := make(map[string]*descriptor.Type)
	var order []string

	owner := make(map[*ast.File]string, len(files))
	for _, f := range files {
		owner[f] = f.Name.Name
	}

	in := inspector.New(files)
	var pkg string
	in.Preorder([]ast.Node{(*ast.File)(nil), (*ast.GenDecl)(nil)}, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.File:
			pkg = owner[n]
		case *ast.GenDecl:
			if n.Tok != token.TYPE {
				return
			}
			for _, spec := range n.Specs {
				ts := spec.(*ast.TypeSpec)
				st, ok := ts.Type.(*ast.StructType)
				if !ok || ts.TypeParams != nil {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(n.Specs) == 1 {
					doc = n.Doc
				}
				typ, ok := s.describeType(pkg, ts.Name.Name, doc, st, errs)
				if !ok {
					continue
				}
				objects[typ.Name] = typ
				order = append(order, typ.Name)
			}
		}
	})

	in.Preorder([]ast.Node{(*ast.File)(nil), (*ast.FuncDecl)(nil)}, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.File:
			pkg = owner[n]
		case *ast.FuncDecl:
			if n.Recv == nil || len(n.Recv.List) != 1 || !n.Name.IsExported() {
				return
			}
			typ, ok := objects[pkg+"."+receiverName(n.Recv.List[0].Type)]
			if !ok {
				return
			}
			if m, ok := s.describeMethod(pkg, n, errs); ok {
				typ.Members = append(typ.Members, m)
			}
		}
	})

	out := make([]*descriptor.Type, 0, len(order))
	for _, name := range order {
		out = append(out, objects[name])
	}
	return out, errs.Err()
}

func (s *Scanner) annotationsOf(doc *ast.CommentGroup, target annotations.Target, name string, errs *annotations.ErrorList) []*annotations.ParsedAnnotation {
	parsed, err := s.parser.ExtractFromComments(s.fset, doc, name)
	errs.Add(err)
	kept, err := s.parser.FilterTargets(parsed, target)
	errs.Add(err)
	return kept
}

func (s *Scanner) describeType(pkg, name string, doc *ast.CommentGroup, st *ast.StructType, errs *annotations.ErrorList) (*descriptor.Type, bool) {
	parsed := s.annotationsOf(doc, annotations.TypeTarget, name, errs)
	marked := false
	for _, a := range parsed {
		if a.Type == annotations.ObjectAnnotation || a.Type == annotations.ValueAnnotation {
			marked = true
		}
	}
	if !marked {
		return nil, false
	}

	typ := &descriptor.Type{Name: pkg + "." + name, Annotations: annotations.ToDescriptors(parsed)}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			continue
		}
		fieldType := qualify(pkg, field.Type)
		as := annotations.ToDescriptors(s.annotationsOf(field.Doc, annotations.FieldTarget, name, errs))
		if field.Tag != nil {
			tag, _ := strconv.Unquote(field.Tag.Value)
			if value, ok := reflect.StructTag(tag).Lookup("meta"); ok {
				if value == "-" {
					continue
				}
				pos := s.fset.Position(field.Tag.Pos())
				tagged, err := s.parser.ParseFor(value, annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}, annotations.FieldTarget)
				errs.Add(err)
				as = append(as, tagged...)
			}
		}
		for _, id := range field.Names {
			if !id.IsExported() {
				continue
			}
			typ.Members = append(typ.Members, descriptor.Member{
				Name:        id.Name,
				Kind:        descriptor.FieldMember,
				Type:        fieldType,
				ElemType:    descriptor.ElementType(fieldType),
				Annotations: as,
			})
		}
	}
	return typ, true
}

func (s *Scanner) describeMethod(pkg string, fn *ast.FuncDecl, errs *annotations.ErrorList) (descriptor.Member, bool) {
	m := descriptor.Member{Name: fn.Name.Name, Kind: descriptor.MethodMember}

	var results []string
	if fn.Type.Results != nil {
		for _, r := range fn.Type.Results.List {
			n := max(len(r.Names), 1)
			for range n {
				results = append(results, qualify(pkg, r.Type))
			}
		}
	}
	if len(results) > 0 && results[len(results)-1] == "error" {
		m.ReturnsError = true
		results = results[:len(results)-1]
	}
	switch len(results) {
	case 0:
	case 1:
		m.Type = results[0]
		m.ElemType = descriptor.ElementType(m.Type)
	default:
		return m, false
	}

	for _, p := range fn.Type.Params.List {
		if _, variadic := p.Type.(*ast.Ellipsis); variadic {
			return m, false
		}
		pt := qualify(pkg, p.Type)
		if len(p.Names) == 0 {
			m.Params = append(m.Params, descriptor.Param{Name: "arg" + strconv.Itoa(len(m.Params)), Type: pt})
			continue
		}
		for _, id := range p.Names {
			name := id.Name
			if name == "_" {
				name = "arg" + strconv.Itoa(len(m.Params))
			}
			m.Params = append(m.Params, descriptor.Param{Name: name, Type: pt})
		}
	}

	m.Annotations = annotations.ToDescriptors(s.annotationsOf(fn.Doc, annotations.MethodTarget, fn.Name.Name, errs))
	return m, true
}

// receiverName returns the type name of a method receiver
func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.ParenExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return receiverName(e.X)
	}
	return ""
}

// qualify renders a type expression the way reflect names types: local
// types get the package name, predeclared types stay bare
func qualify(pkg string, expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		if types.Universe.Lookup(e.Name) != nil {
			return e.Name
		}
		return pkg + "." + e.Name
	case *ast.StarExpr:
		return "*" + qualify(pkg, e.X)
	case *ast.ParenExpr:
		return qualify(pkg, e.X)
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + qualify(pkg, e.Elt)
		}
		return "[" + types.ExprString(e.Len) + "]" + qualify(pkg, e.Elt)
	case *ast.MapType:
		return "map[" + qualify(pkg, e.Key) + "]" + qualify(pkg, e.Value)
	case *ast.ChanType:
		switch e.Dir {
		case ast.SEND:
			return "chan<- " + qualify(pkg, e.Value)
		case ast.RECV:
			return "<-chan " + qualify(pkg, e.Value)
		}
		return "chan " + qualify(pkg, e.Value)
	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return "interface {}"
		}
	}
	return types.ExprString(expr)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load scans dirs and fails on the first problem
func Load(dirs ...string) (*descriptor.Table, error) {
	res, err := NewScanner().Scan(dirs...)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", strings.Join(dirs, ", "), err)
	}
	return res.Table, nil
}
