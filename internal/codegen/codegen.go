// Package codegen generates typed wrappers for entity schemas.
//
// For an entity User the output declares:
//
//	type User struct{ *model.Entity }
//	func NewUser(raw model.Raw, opts ...model.Option) (*User, error)
//	func (u *User) Clone() *User
//	func (u *User) Age() (int64, error)
//	func (u *User) SetAge(v int64) error
//	type Users struct{ *model.Collection[*User] }
//	func NewUsers(raws []model.Raw, cfg model.CollectionConfig[*User]) (*Users, error)
//
// Nullable fields additionally get ClearX, which stores null.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/roach88/modelkit/internal/schema"
	"github.com/roach88/modelkit/pkg/value"
)

const (
	// DefaultModelImport is the import path of the model package.
	DefaultModelImport = "github.com/roach88/modelkit/pkg/model"

	// DefaultValueImport is the import path of the value package.
	DefaultValueImport = "github.com/roach88/modelkit/pkg/value"
)

// Options controls generated output.
type Options struct {
	// Package is the Go package name of the generated file. Required.
	Package string

	// Source names the schema file in the generated header.
	Source string

	// ModelImport and ValueImport override the library import paths.
	ModelImport string
	ValueImport string
}

// Error reports schemas that cannot be generated.
type Error struct {
	Errors []schema.ValidationError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "codegen: " + strings.Join(msgs, "; ")
}

type fileData struct {
	Package     string
	Source      string
	ModelImport string
	ValueImport string
	Entities    []entityData
}

type entityData struct {
	Type         string
	Recv         string
	Doc          string
	AllowUnknown bool
	Collection   string
	Fields       []fieldData
}

type fieldData struct {
	Key       string
	Method    string
	Namespace string
	Doc       string
	GoType    string
	Getter    string
	Wrap      string
	Settable  bool
	Clearable bool
	Lookup    bool
}

var kindTypes = map[value.Kind]struct{ goType, getter, wrap string }{
	value.KindString: {"string", "GetString", "value.String"},
	value.KindInt:    {"int64", "GetInt", "value.Int"},
	value.KindFloat:  {"float64", "GetFloat", "value.Float"},
	value.KindBool:   {"bool", "GetBool", "value.Bool"},
	value.KindArray:  {"value.Array", "GetArray", ""},
	value.KindObject: {"value.Object", "GetObject", ""},
}

// Generate renders one gofmt-formatted Go file declaring wrappers for every
// schema. Schemas failing schema.ValidateAll or CheckNames are rejected
// with an *Error listing every problem.
func Generate(schemas []schema.EntitySchema, opts Options) ([]byte, error) {
	if opts.Package == "" {
		return nil, fmt.Errorf("codegen: package name is required")
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("codegen: no entity schemas")
	}

	errs := schema.ValidateAll(schemas)
	for i := range schemas {
		errs = append(errs, CheckNames(&schemas[i])...)
	}
	if len(errs) > 0 {
		return nil, &Error{Errors: errs}
	}

	data := fileData{
		Package:     opts.Package,
		Source:      opts.Source,
		ModelImport: opts.ModelImport,
		ValueImport: opts.ValueImport,
	}
	if data.ModelImport == "" {
		data.ModelImport = DefaultModelImport
	}
	if data.ValueImport == "" {
		data.ValueImport = DefaultValueImport
	}
	for i := range schemas {
		data.Entities = append(data.Entities, entityFor(&schemas[i]))
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: format generated source: %w", err)
	}
	return src, nil
}

func entityFor(s *schema.EntitySchema) entityData {
	e := entityData{
		Type:         s.Name,
		Recv:         receiverName(s.Name),
		Doc:          s.Doc,
		AllowUnknown: s.AllowUnknown,
		Collection:   s.CollectionName(),
	}
	for _, f := range s.Fields() {
		fd := fieldData{
			Key:       f.Name,
			Method:    ExportedName(f.Name),
			Namespace: f.Namespace.String(),
			Doc:       f.Doc,
			Clearable: f.Nullable || f.Kind == value.KindNull,
		}
		if kt, ok := kindTypes[f.Kind]; ok {
			fd.GoType = kt.goType
			fd.Getter = kt.getter
			fd.Wrap = kt.wrap
			fd.Settable = true
		} else {
			fd.Lookup = true
		}
		e.Fields = append(e.Fields, fd)
	}
	return e
}

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"doc": doc,
}).Parse(fileSource))

// doc renders schema documentation as a trailing comment paragraph.
// Empty text renders nothing.
func doc(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("//\n")
	for _, l := range strings.Split(text, "\n") {
		b.WriteString(strings.TrimRight("// "+l, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

const fileSource = `// Code generated by modelkit gen. DO NOT EDIT.
{{- if .Source}}
// Source: {{.Source}}
{{- end}}

package {{.Package}}

import (
	"{{.ModelImport}}"
	"{{.ValueImport}}"
)
{{range $e := .Entities}}
// {{$e.Type}} wraps a model.Entity with typed accessors.
{{doc $e.Doc}}type {{$e.Type}} struct {
	*model.Entity
}

// New{{$e.Type}} builds a {{$e.Type}} from raw. Unknown attributes are
// {{if $e.AllowUnknown}}admitted{{else}}rejected{{end}} unless opts override it.
func New{{$e.Type}}(raw model.Raw, opts ...model.Option) (*{{$e.Type}}, error) {
	opts = append([]model.Option{model.WithAllowUnknown({{$e.AllowUnknown}})}, opts...)
	e, err := model.New(raw, opts...)
	if err != nil {
		return nil, err
	}
	return &{{$e.Type}}{Entity: e}, nil
}

// Clone returns an independent deep copy of {{$e.Recv}}.
func ({{$e.Recv}} *{{$e.Type}}) Clone() *{{$e.Type}} {
	return &{{$e.Type}}{Entity: {{$e.Recv}}.Entity.Clone()}
}
{{range $f := $e.Fields}}
{{- if $f.Lookup}}

// {{$f.Method}} returns the {{$f.Namespace}} attribute "{{$f.Key}}".
{{doc $f.Doc}}func ({{$e.Recv}} *{{$e.Type}}) {{$f.Method}}() (value.Value, bool) {
	return {{$e.Recv}}.Lookup("{{$f.Key}}")
}
{{- else}}

// {{$f.Method}} returns the {{$f.Namespace}} attribute "{{$f.Key}}".
{{doc $f.Doc}}func ({{$e.Recv}} *{{$e.Type}}) {{$f.Method}}() ({{$f.GoType}}, error) {
	return {{$e.Recv}}.{{$f.Getter}}("{{$f.Key}}")
}
{{- end}}
{{- if $f.Settable}}

// Set{{$f.Method}} writes the {{$f.Namespace}} attribute "{{$f.Key}}".
func ({{$e.Recv}} *{{$e.Type}}) Set{{$f.Method}}(v {{$f.GoType}}) error {
	return {{$e.Recv}}.Set("{{$f.Key}}", {{if $f.Wrap}}{{$f.Wrap}}(v){{else}}v{{end}})
}
{{- end}}
{{- if $f.Clearable}}

// Clear{{$f.Method}} stores null in "{{$f.Key}}".
func ({{$e.Recv}} *{{$e.Type}}) Clear{{$f.Method}}() error {
	return {{$e.Recv}}.Set("{{$f.Key}}", value.Null{})
}
{{- end}}
{{end}}
// {{$e.Collection}} is an ordered collection of *{{$e.Type}}.
type {{$e.Collection}} struct {
	*model.Collection[*{{$e.Type}}]
}

// New{{$e.Collection}} builds a collection of {{$e.Type}} entities.
// cfg.Constructor defaults to New{{$e.Type}}.
func New{{$e.Collection}}(raws []model.Raw, cfg model.CollectionConfig[*{{$e.Type}}]) (*{{$e.Collection}}, error) {
	if cfg.Constructor == nil {
		cfg.Constructor = New{{$e.Type}}
	}
	c, err := model.NewCollection(raws, cfg)
	if err != nil {
		return nil, err
	}
	return &{{$e.Collection}}{Collection: c}, nil
}
{{end -}}
`
