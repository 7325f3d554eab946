package schema

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/satishbabariya/magicorm/runtime"
)

var typeSpecLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// typeSpec is the grammar of a column type spec such as "varchar(72)".
type typeSpec struct {
	Name string    `@Ident`
	Args *typeArgs `( "(" @@ ")" )?`
}

type typeArgs struct {
	Size  string  `@(Int | Ident)`
	Scale *string `( "," @(Int | Ident) )?`
}

var typeSpecParser = participle.MustBuild[typeSpec](
	participle.Lexer(typeSpecLexer),
	participle.Elide("Whitespace"),
)

// TypeSpec is a parsed column type.
type TypeSpec struct {
	Type  Type
	Size  int
	Scale int
}

// ParseType parses "name" or "name(size)" or "name(size,scale)".
func ParseType(spec string) (TypeSpec, error) {
	parsed, err := typeSpecParser.ParseString("", spec)
	if err != nil {
		return TypeSpec{}, &runtime.SchemaError{Cause: runtime.ErrInvalidType, Detail: strconv.Quote(spec)}
	}

	t := Type(strings.ToLower(parsed.Name))
	if !t.Valid() {
		return TypeSpec{}, &runtime.SchemaError{Cause: runtime.ErrInvalidType, Detail: strconv.Quote(spec)}
	}

	ts := TypeSpec{Type: t}
	if parsed.Args == nil {
		return ts, nil
	}

	invalidSize := &runtime.SchemaError{Cause: runtime.ErrInvalidSize, Detail: strconv.Quote(spec)}
	if !t.Sizeable() {
		return TypeSpec{}, invalidSize
	}
	if ts.Size, err = strconv.Atoi(parsed.Args.Size); err != nil || ts.Size <= 0 {
		return TypeSpec{}, invalidSize
	}
	if parsed.Args.Scale != nil {
		if !t.Scalable() {
			return TypeSpec{}, invalidSize
		}
		if ts.Scale, err = strconv.Atoi(*parsed.Args.Scale); err != nil || ts.Scale > ts.Size {
			return TypeSpec{}, invalidSize
		}
	}
	return ts, nil
}

// String renders the spec back in its source form.
func (ts TypeSpec) String() string {
	switch {
	case ts.Size == 0:
		return string(ts.Type)
	case ts.Scale == 0:
		return string(ts.Type) + "(" + strconv.Itoa(ts.Size) + ")"
	default:
		return string(ts.Type) + "(" + strconv.Itoa(ts.Size) + "," + strconv.Itoa(ts.Scale) + ")"
	}
}
