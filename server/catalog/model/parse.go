package model

import (
	"strings"

	"github.com/gear6io/metacat/server/catalog/internal/typeparse"
	"github.com/gear6io/metacat/server/catalog/shared"
)

// ParseDataType parses the form produced by DataType.String, including
// nested NOT NULL markers.
func ParseDataType(s string) (DataType, error) {
	l := typeparse.NewLexer(s)
	t, err := parseType(l)
	if err == nil {
		err = l.ExpectEOF()
	}
	if err != nil {
		return DataType{}, shared.NewCatalogInvalidInput("data_type", err.Error())
	}
	return t, nil
}

var simpleKinds = map[string]TypeKind{
	"BOOLEAN":  KindBoolean,
	"TINYINT":  KindTinyInt,
	"SMALLINT": KindSmallInt,
	"INT":      KindInt,
	"BIGINT":   KindBigInt,
	"FLOAT":    KindFloat,
	"DOUBLE":   KindDouble,
	"STRING":   KindString,
	"BYTES":    KindBytes,
	"DATE":     KindDate,
}

func parseType(l *typeparse.Lexer) (DataType, error) {
	name, err := l.ExpectIdent()
	if err != nil {
		return DataType{}, err
	}

	var t DataType
	switch upper := strings.ToUpper(name); upper {
	case "DECIMAL":
		p, s, err := parseTwoInts(l)
		if err != nil {
			return DataType{}, err
		}
		t = Decimal(p, s)
	case "CHAR", "VARCHAR", "BINARY", "TIMESTAMP":
		n, err := parseOneInt(l)
		if err != nil {
			return DataType{}, err
		}
		switch upper {
		case "CHAR":
			t = Char(n)
		case "VARCHAR":
			t = Varchar(n)
		case "BINARY":
			t = Binary(n)
		default:
			t = Timestamp(n)
		}
	case "ARRAY":
		if err := l.Expect("<"); err != nil {
			return DataType{}, err
		}
		elem, err := parseType(l)
		if err != nil {
			return DataType{}, err
		}
		if err := l.Expect(">"); err != nil {
			return DataType{}, err
		}
		t = Array(elem)
	case "MAP":
		if err := l.Expect("<"); err != nil {
			return DataType{}, err
		}
		key, err := parseType(l)
		if err != nil {
			return DataType{}, err
		}
		if err := l.Expect(","); err != nil {
			return DataType{}, err
		}
		value, err := parseType(l)
		if err != nil {
			return DataType{}, err
		}
		if err := l.Expect(">"); err != nil {
			return DataType{}, err
		}
		t = Map(key, value)
	case "ROW":
		if err := l.Expect("<"); err != nil {
			return DataType{}, err
		}
		var fields []Field
		for {
			fieldName, err := l.ExpectIdent()
			if err != nil {
				return DataType{}, err
			}
			fieldType, err := parseType(l)
			if err != nil {
				return DataType{}, err
			}
			fields = append(fields, Field{Name: fieldName, Type: fieldType})
			more, err := l.Accept(",")
			if err != nil {
				return DataType{}, err
			}
			if !more {
				break
			}
		}
		if err := l.Expect(">"); err != nil {
			return DataType{}, err
		}
		t = Row(fields...)
	default:
		kind, ok := simpleKinds[upper]
		if !ok {
			tok, _ := l.Peek()
			return DataType{}, l.Errorf(tok, "unknown type %s", name)
		}
		t = DataType{Kind: kind, Nullable: true}
	}

	notNull, err := l.AcceptKeyword("NOT")
	if err != nil {
		return DataType{}, err
	}
	if notNull {
		tok, err := l.Next()
		if err != nil {
			return DataType{}, err
		}
		if tok.Kind != typeparse.Ident || !strings.EqualFold(tok.Text, "NULL") {
			return DataType{}, l.Errorf(tok, "expected NULL")
		}
		t = t.NotNull()
	}
	return t, nil
}

func parseOneInt(l *typeparse.Lexer) (int, error) {
	if err := l.Expect("("); err != nil {
		return 0, err
	}
	n, err := l.ExpectInt()
	if err != nil {
		return 0, err
	}
	return n, l.Expect(")")
}

func parseTwoInts(l *typeparse.Lexer) (int, int, error) {
	if err := l.Expect("("); err != nil {
		return 0, 0, err
	}
	a, err := l.ExpectInt()
	if err != nil {
		return 0, 0, err
	}
	if err := l.Expect(","); err != nil {
		return 0, 0, err
	}
	b, err := l.ExpectInt()
	if err != nil {
		return 0, 0, err
	}
	return a, b, l.Expect(")")
}
