package codec

import (
	"fmt"
	"strings"

	"github.com/gear6io/metacat/server/catalog/internal/typeparse"
	"github.com/gear6io/metacat/server/catalog/model"
)

// HiveTypeString lowers t to the metastore's type grammar. Nullability is not
// part of that grammar and is ignored here.
func HiveTypeString(t model.DataType) (string, error) {
	switch t.Kind {
	case model.KindBoolean:
		return "boolean", nil
	case model.KindTinyInt:
		return "tinyint", nil
	case model.KindSmallInt:
		return "smallint", nil
	case model.KindInt:
		return "int", nil
	case model.KindBigInt:
		return "bigint", nil
	case model.KindFloat:
		return "float", nil
	case model.KindDouble:
		return "double", nil
	case model.KindString:
		return "string", nil
	case model.KindBytes:
		return "binary", nil
	case model.KindDate:
		return "date", nil
	case model.KindDecimal:
		if t.Precision < 1 || t.Precision > 38 || t.Scale < 0 || t.Scale > t.Precision {
			return "", fmt.Errorf("unsupported %s", t.String())
		}
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale), nil
	case model.KindChar:
		if t.Length < 1 || t.Length > model.MaxCharLength {
			return "", fmt.Errorf("CHAR length must be between 1 and %d, got %d", model.MaxCharLength, t.Length)
		}
		return fmt.Sprintf("char(%d)", t.Length), nil
	case model.KindVarchar:
		if t.Length < 1 || t.Length > model.MaxVarcharLength {
			return "", fmt.Errorf("VARCHAR length must be between 1 and %d, got %d", model.MaxVarcharLength, t.Length)
		}
		return fmt.Sprintf("varchar(%d)", t.Length), nil
	case model.KindTimestamp:
		if t.Precision != model.DefaultTimestampPrecision {
			return "", fmt.Errorf("only TIMESTAMP(%d) is supported, got %s", model.DefaultTimestampPrecision, t.String())
		}
		return "timestamp", nil
	case model.KindBinary:
		return "", fmt.Errorf("fixed length %s is not supported, use BYTES", t.String())
	case model.KindArray:
		elem, err := HiveTypeString(*t.Element)
		if err != nil {
			return "", err
		}
		return "array<" + elem + ">", nil
	case model.KindMap:
		key, err := HiveTypeString(*t.Key)
		if err != nil {
			return "", err
		}
		value, err := HiveTypeString(*t.Value)
		if err != nil {
			return "", err
		}
		return "map<" + key + "," + value + ">", nil
	case model.KindRow:
		if len(t.Fields) == 0 {
			return "", fmt.Errorf("ROW must have at least one field")
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := HiveTypeString(f.Type)
			if err != nil {
				return "", err
			}
			parts[i] = f.Name + ":" + ft
		}
		return "struct<" + strings.Join(parts, ",") + ">", nil
	default:
		return "", fmt.Errorf("unsupported type %s", t.Kind)
	}
}

// ParseHiveType parses the metastore's type grammar. Every parsed type,
// nested ones included, is nullable.
func ParseHiveType(s string) (model.DataType, error) {
	l := typeparse.NewLexer(s)
	t, err := parseHiveType(l)
	if err != nil {
		return model.DataType{}, err
	}
	if err := l.ExpectEOF(); err != nil {
		return model.DataType{}, err
	}
	return t, nil
}

var hivePrimitives = map[string]func() model.DataType{
	"boolean":  model.Boolean,
	"tinyint":  model.TinyInt,
	"smallint": model.SmallInt,
	"int":      model.Int,
	"integer":  model.Int,
	"bigint":   model.BigInt,
	"float":    model.Float,
	"string":   model.String,
	"binary":   model.Bytes,
	"date":     model.Date,
	"timestamp": func() model.DataType {
		return model.Timestamp(model.DefaultTimestampPrecision)
	},
}

func parseHiveType(l *typeparse.Lexer) (model.DataType, error) {
	name, err := l.ExpectIdent()
	if err != nil {
		return model.DataType{}, err
	}

	switch lower := strings.ToLower(name); lower {
	case "double":
		// "double precision" is an accepted spelling
		if _, err := l.AcceptKeyword("precision"); err != nil {
			return model.DataType{}, err
		}
		return model.Double(), nil
	case "decimal", "numeric":
		precision, scale := model.DefaultDecimalPrecision, model.DefaultDecimalScale
		open, err := l.Accept("(")
		if err != nil {
			return model.DataType{}, err
		}
		if open {
			if precision, err = l.ExpectInt(); err != nil {
				return model.DataType{}, err
			}
			comma, err := l.Accept(",")
			if err != nil {
				return model.DataType{}, err
			}
			if comma {
				if scale, err = l.ExpectInt(); err != nil {
					return model.DataType{}, err
				}
			}
			if err := l.Expect(")"); err != nil {
				return model.DataType{}, err
			}
		}
		return model.Decimal(precision, scale), nil
	case "char", "varchar":
		if err := l.Expect("("); err != nil {
			return model.DataType{}, err
		}
		n, err := l.ExpectInt()
		if err != nil {
			return model.DataType{}, err
		}
		if err := l.Expect(")"); err != nil {
			return model.DataType{}, err
		}
		if lower == "char" {
			return model.Char(n), nil
		}
		return model.Varchar(n), nil
	case "array":
		if err := l.Expect("<"); err != nil {
			return model.DataType{}, err
		}
		elem, err := parseHiveType(l)
		if err != nil {
			return model.DataType{}, err
		}
		if err := l.Expect(">"); err != nil {
			return model.DataType{}, err
		}
		return model.Array(elem), nil
	case "map":
		if err := l.Expect("<"); err != nil {
			return model.DataType{}, err
		}
		key, err := parseHiveType(l)
		if err != nil {
			return model.DataType{}, err
		}
		if err := l.Expect(","); err != nil {
			return model.DataType{}, err
		}
		value, err := parseHiveType(l)
		if err != nil {
			return model.DataType{}, err
		}
		if err := l.Expect(">"); err != nil {
			return model.DataType{}, err
		}
		return model.Map(key, value), nil
	case "struct":
		if err := l.Expect("<"); err != nil {
			return model.DataType{}, err
		}
		var fields []model.Field
		for {
			fieldName, err := l.ExpectIdent()
			if err != nil {
				return model.DataType{}, err
			}
			if err := l.Expect(":"); err != nil {
				return model.DataType{}, err
			}
			fieldType, err := parseHiveType(l)
			if err != nil {
				return model.DataType{}, err
			}
			fields = append(fields, model.Field{Name: fieldName, Type: fieldType})
			more, err := l.Accept(",")
			if err != nil {
				return model.DataType{}, err
			}
			if !more {
				break
			}
		}
		if err := l.Expect(">"); err != nil {
			return model.DataType{}, err
		}
		return model.Row(fields...), nil
	default:
		ctor, ok := hivePrimitives[lower]
		if !ok {
			return model.DataType{}, fmt.Errorf("unsupported metastore type %q in %q", name, l.Input())
		}
		return ctor(), nil
	}
}
