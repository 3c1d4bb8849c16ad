package orc

import (
	"fmt"
	"strings"

	"github.com/orc-go/orc-go/format"
)

// Type is one node of the logical schema tree, reconstructed from the
// flattened pre-order type list of the file footer. ID is the column id
// used to address the node's streams and encoding within a stripe.
type Type struct {
	ID        int
	Kind      format.TypeKind
	Names     []string
	Children  []*Type
	MaxLength int
	Precision int
	Scale     int
}

// newSchema rebuilds the type tree from the footer's flattened type list.
// Entry 0 is the root; each entry's subtype ids point at its children in
// pre-order.
func newSchema(types []format.Type) (*Type, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: footer carries no types", ErrInvalidEncoding)
	}
	var build func(id int) (*Type, error)
	build = func(id int) (*Type, error) {
		if id < 0 || id >= len(types) {
			return nil, fmt.Errorf("%w: type id %d out of range", ErrInvalidEncoding, id)
		}
		ft := &types[id]
		t := &Type{
			ID:        id,
			Kind:      ft.Kind,
			Names:     ft.FieldNames,
			MaxLength: int(ft.MaximumLength),
			Precision: int(ft.Precision),
			Scale:     int(ft.Scale),
		}
		if t.Kind == format.TypeDecimal && t.Precision == 0 {
			// Writers may omit precision; the widest representable
			// decimal is the documented default.
			t.Precision, t.Scale = 38, 9
		}
		for _, sub := range ft.Subtypes {
			if int(sub) <= id {
				return nil, fmt.Errorf("%w: type %d references earlier type %d",
					ErrInvalidEncoding, id, sub)
			}
			child, err := build(int(sub))
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, child)
		}
		switch t.Kind {
		case format.TypeStruct:
			if len(t.Names) != len(t.Children) {
				return nil, fmt.Errorf("%w: struct type %d has %d names for %d children",
					ErrInvalidEncoding, id, len(t.Names), len(t.Children))
			}
		case format.TypeList:
			if len(t.Children) != 1 {
				return nil, fmt.Errorf("%w: list type %d has %d children",
					ErrInvalidEncoding, id, len(t.Children))
			}
		case format.TypeMap:
			if len(t.Children) != 2 {
				return nil, fmt.Errorf("%w: map type %d has %d children",
					ErrInvalidEncoding, id, len(t.Children))
			}
		case format.TypeUnion:
			if len(t.Children) == 0 || len(t.Children) > 127 {
				return nil, fmt.Errorf("%w: union type %d has %d variants",
					ErrInvalidEncoding, id, len(t.Children))
			}
		default:
			if len(t.Children) != 0 {
				return nil, fmt.Errorf("%w: primitive type %d has children",
					ErrInvalidEncoding, id)
			}
		}
		return t, nil
	}
	return build(0)
}

// Field returns the named direct child of a struct type, or nil.
func (t *Type) Field(name string) *Type {
	for i, n := range t.Names {
		if n == name {
			return t.Children[i]
		}
	}
	return nil
}

// String renders the type in the conventional compact notation, for
// example struct<a:int,b:list<string>>.
func (t *Type) String() string {
	var s strings.Builder
	t.format(&s)
	return s.String()
}

func (t *Type) format(s *strings.Builder) {
	switch t.Kind {
	case format.TypeStruct:
		s.WriteString("struct<")
		for i, child := range t.Children {
			if i > 0 {
				s.WriteByte(',')
			}
			s.WriteString(t.Names[i])
			s.WriteByte(':')
			child.format(s)
		}
		s.WriteByte('>')
	case format.TypeList:
		s.WriteString("list<")
		t.Children[0].format(s)
		s.WriteByte('>')
	case format.TypeMap:
		s.WriteString("map<")
		t.Children[0].format(s)
		s.WriteByte(',')
		t.Children[1].format(s)
		s.WriteByte('>')
	case format.TypeUnion:
		s.WriteString("uniontype<")
		for i, child := range t.Children {
			if i > 0 {
				s.WriteByte(',')
			}
			child.format(s)
		}
		s.WriteByte('>')
	case format.TypeDecimal:
		fmt.Fprintf(s, "decimal(%d,%d)", t.Precision, t.Scale)
	case format.TypeChar:
		fmt.Fprintf(s, "char(%d)", t.MaxLength)
	case format.TypeVarchar:
		fmt.Fprintf(s, "varchar(%d)", t.MaxLength)
	default:
		s.WriteString(typeName(t.Kind))
	}
}

// typeName maps primitive kinds to their lowercase Hive names, which
// differ from the enum names for the integer widths.
func typeName(k format.TypeKind) string {
	switch k {
	case format.TypeBoolean:
		return "boolean"
	case format.TypeByte:
		return "tinyint"
	case format.TypeShort:
		return "smallint"
	case format.TypeInt:
		return "int"
	case format.TypeLong:
		return "bigint"
	case format.TypeFloat:
		return "float"
	case format.TypeDouble:
		return "double"
	case format.TypeString:
		return "string"
	case format.TypeBinary:
		return "binary"
	case format.TypeTimestamp:
		return "timestamp"
	case format.TypeDate:
		return "date"
	default:
		return strings.ToLower(k.String())
	}
}
