// Package dsl parses magicorm schema files (.morm) into models.
//
//	// users of the service
//	model user {
//	  id    int         @primary @autoinc
//	  name  varchar(72) @notnull @unique @comment("display name")
//	  age   int(3)      @default(18)
//	}
package dsl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/satishbabariya/magicorm/schema"
)

// Lexer tokenizes schema files.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}(),@]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// File is the parse tree of one schema file.
type File struct {
	Models []*ModelDecl `@@*`
}

// ModelDecl is a model block.
type ModelDecl struct {
	Pos    lexer.Position
	Name   string       `"model" @Ident "{"`
	Fields []*FieldDecl `@@* "}"`
}

// FieldDecl is one column line.
type FieldDecl struct {
	Pos   lexer.Position
	Name  string       `@Ident`
	Type  string       `@Ident`
	Args  []string     `( "(" @(Number | Ident) ( "," @(Number | Ident) )* ")" )?`
	Attrs []*Attribute `@@*`
}

// Attribute is an @flag or @name(value) annotation.
type Attribute struct {
	Pos  lexer.Position
	Name string `"@" @Ident`
	Arg  *Value `( "(" @@ ")" )?`
}

// Value is a literal attribute argument.
type Value struct {
	String *string `  @String`
	Number *string `| @Number`
	Bool   *string `| @("true" | "false")`
	Null   bool    `| @"null"`
}

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// Error is a schema file error with its source position.
type Error struct {
	Pos lexer.Position
	Msg string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse parses src and builds its models in declaration order.
func Parse(filename string, r io.Reader) ([]*schema.Model, error) {
	file, err := parser.Parse(filename, r)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &Error{Pos: perr.Position(), Msg: perr.Message(), Err: err}
		}
		return nil, err
	}
	return file.Build()
}

// ParseString parses a schema held in a string.
func ParseString(filename, src string) ([]*schema.Model, error) {
	return Parse(filename, strings.NewReader(src))
}

// Build converts the parse tree into models.
func (f *File) Build() ([]*schema.Model, error) {
	models := make([]*schema.Model, 0, len(f.Models))
	seen := make(map[string]bool)
	for _, decl := range f.Models {
		if seen[decl.Name] {
			return nil, &Error{Pos: decl.Pos, Msg: fmt.Sprintf("model %s is already defined", decl.Name)}
		}
		seen[decl.Name] = true

		fields := make([]schema.Field, 0, len(decl.Fields))
		for _, fd := range decl.Fields {
			desc, err := fd.descriptor()
			if err != nil {
				return nil, err
			}
			fields = append(fields, schema.F(fd.Name, desc))
		}

		m, err := schema.NewModel(decl.Name, fields...)
		if err != nil {
			return nil, &Error{Pos: decl.Pos, Msg: err.Error(), Err: err}
		}
		models = append(models, m)
	}
	return models, nil
}

func (fd *FieldDecl) descriptor() (*schema.Descriptor, error) {
	spec := fd.Type
	if len(fd.Args) > 0 {
		spec += "(" + strings.Join(fd.Args, ",") + ")"
	}
	desc := schema.Prop(spec)

	for _, attr := range fd.Attrs {
		if err := attr.apply(desc); err != nil {
			return nil, err
		}
	}
	if err := desc.Err(); err != nil {
		return nil, &Error{Pos: fd.Pos, Msg: fmt.Sprintf("field %s: %v", fd.Name, err), Err: err}
	}
	return desc, nil
}

func (a *Attribute) apply(d *schema.Descriptor) error {
	flag := func(set func() *schema.Descriptor) error {
		if a.Arg != nil {
			return &Error{Pos: a.Pos, Msg: fmt.Sprintf("@%s takes no argument", a.Name)}
		}
		set()
		return nil
	}

	switch a.Name {
	case "primary":
		return flag(d.Primary)
	case "autoinc":
		return flag(d.Autoinc)
	case "unique":
		return flag(d.Unique)
	case "notnull":
		return flag(d.NotNull)
	case "required":
		return flag(d.Required)
	case "default":
		if a.Arg == nil {
			return &Error{Pos: a.Pos, Msg: "@default needs a value"}
		}
		v, err := a.Arg.Go()
		if err != nil {
			return &Error{Pos: a.Pos, Msg: err.Error(), Err: err}
		}
		d.Default(v)
		return nil
	case "comment":
		if a.Arg == nil || a.Arg.String == nil {
			return &Error{Pos: a.Pos, Msg: "@comment needs a string"}
		}
		d.Comment(*a.Arg.String)
		return nil
	default:
		return &Error{Pos: a.Pos, Msg: fmt.Sprintf("unknown attribute @%s", a.Name)}
	}
}

// Go returns the literal as a Go value.
func (v *Value) Go() (any, error) {
	switch {
	case v.String != nil:
		return *v.String, nil
	case v.Bool != nil:
		return *v.Bool == "true", nil
	case v.Null:
		return nil, nil
	case v.Number != nil:
		if strings.Contains(*v.Number, ".") {
			return strconv.ParseFloat(*v.Number, 64)
		}
		return strconv.ParseInt(*v.Number, 10, 64)
	}
	return nil, fmt.Errorf("empty value")
}
