// Package schema describes tables as ordered column definitions and pairs
// row values with the model they belong to.
package schema

// Type is a column type tag from the fixed magicorm vocabulary.
type Type string

// Numeric types.
const (
	Number    Type = "number"
	Int       Type = "int"
	Integer   Type = "integer"
	TinyInt   Type = "tinyint"
	SmallInt  Type = "smallint"
	MediumInt Type = "mediumint"
	BigInt    Type = "bigint"
	Decimal   Type = "decimal"
	Float     Type = "float"
	Double    Type = "double"
)

// String types.
const (
	String     Type = "string"
	Char       Type = "char"
	Varchar    Type = "varchar"
	TinyText   Type = "tinytext"
	Text       Type = "text"
	MediumText Type = "mediumtext"
	LongText   Type = "longtext"
)

// Date and time types.
const (
	Date      Type = "date"
	DateTime  Type = "datetime"
	Timestamp Type = "timestamp"
	Time      Type = "time"
	Year      Type = "year"
)

// Boolean is the only boolean type.
const Boolean Type = "boolean"

// DefaultStringSize is the length given to a generic string column without a size.
const DefaultStringSize = 255

var (
	numericTypes = []Type{Number, Int, Integer, TinyInt, SmallInt, MediumInt, BigInt, Decimal, Float, Double}
	stringTypes  = []Type{String, Char, Varchar, TinyText, Text, MediumText, LongText}
	dateTypes    = []Type{Date, DateTime, Timestamp, Time, Year}
)

func contains(list []Type, t Type) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// Valid reports whether t belongs to the vocabulary.
func (t Type) Valid() bool {
	return t.IsNumeric() || t.IsString() || t.IsDate() || t == Boolean
}

// IsNumeric reports whether t is a numeric kind.
func (t Type) IsNumeric() bool { return contains(numericTypes, t) }

// IsString reports whether t is a string kind.
func (t Type) IsString() bool { return contains(stringTypes, t) }

// IsDate reports whether t is a date or time kind.
func (t Type) IsDate() bool { return contains(dateTypes, t) }

// IsInteger reports whether values of t are whole numbers.
func (t Type) IsInteger() bool {
	switch t {
	case Int, Integer, TinyInt, SmallInt, MediumInt, BigInt, Year:
		return true
	}
	return false
}

// Sizeable reports whether a length may be configured for t.
func (t Type) Sizeable() bool {
	return t.IsNumeric() || t.IsString()
}

// Scalable reports whether t accepts a second size token, as in decimal(10,2).
func (t Type) Scalable() bool {
	return t == Decimal || t == Float || t == Double
}
