package codec

import (
	"strings"

	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/metastore"
)

// The metastore only records JAVA functions; other languages are kept as a
// prefix of the class name.
const (
	pythonFunctionPrefix = "python:"
	scalaFunctionPrefix  = "scala:"
)

func (c *Codec) EncodeFunction(path model.ObjectPath, fn *model.Function) (*metastore.Function, error) {
	if fn.ClassName == "" {
		return nil, shared.NewCatalogInvalidInput("class_name", "function must name a class")
	}
	className := fn.ClassName
	switch fn.Language {
	case model.LanguageJava, "":
	case model.LanguagePython:
		className = pythonFunctionPrefix + className
	case model.LanguageScala:
		className = scalaFunctionPrefix + className
	default:
		return nil, shared.NewCatalogInvalidInput("language", "unknown function language "+string(fn.Language))
	}
	return &metastore.Function{
		DBName:       path.Database,
		FunctionName: path.Object,
		ClassName:    className,
		FunctionType: metastore.FunctionTypeJava,
	}, nil
}

func (c *Codec) DecodeFunction(rec *metastore.Function) *model.Function {
	switch {
	case strings.HasPrefix(rec.ClassName, pythonFunctionPrefix):
		return &model.Function{ClassName: strings.TrimPrefix(rec.ClassName, pythonFunctionPrefix), Language: model.LanguagePython}
	case strings.HasPrefix(rec.ClassName, scalaFunctionPrefix):
		return &model.Function{ClassName: strings.TrimPrefix(rec.ClassName, scalaFunctionPrefix), Language: model.LanguageScala}
	default:
		return &model.Function{ClassName: rec.ClassName, Language: model.LanguageJava}
	}
}
