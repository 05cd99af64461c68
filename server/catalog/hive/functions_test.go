package hive

import (
	"context"
	"testing"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := openWithDatabase(t, "3.1.2")
	f1 := model.NewObjectPath("db1", "f1")

	udf := &model.Function{ClassName: "com.example.Upper", Language: model.LanguageJava}
	require.NoError(t, c.CreateFunction(ctx, f1, udf, false))

	got, err := c.GetFunction(ctx, f1)
	require.NoError(t, err)
	assert.Equal(t, udf, got)

	err = c.CreateFunction(ctx, f1, udf, false)
	assert.True(t, errors.HasCode(err, shared.CatalogAlreadyExists))
	assert.NoError(t, c.CreateFunction(ctx, f1, udf, true))

	py := &model.Function{ClassName: "pkg.module.upper", Language: model.LanguagePython}
	require.NoError(t, c.AlterFunction(ctx, f1, py, false))
	got, err = c.GetFunction(ctx, f1)
	require.NoError(t, err)
	assert.Equal(t, py, got)

	names, err := c.ListFunctions(ctx, "db1")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, names)

	require.NoError(t, c.DropFunction(ctx, f1, false))
	exists, err := c.FunctionExists(ctx, f1)
	require.NoError(t, err)
	assert.False(t, exists)

	err = c.DropFunction(ctx, f1, false)
	assert.True(t, errors.HasCode(err, shared.CatalogNotFound))
	assert.NoError(t, c.DropFunction(ctx, f1, true))

	err = c.AlterFunction(ctx, f1, udf, false)
	assert.True(t, errors.HasCode(err, shared.CatalogNotFound))
	assert.NoError(t, c.AlterFunction(ctx, f1, udf, true))
}

func TestFunctionsNeedDatabase(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t, "3.1.2")

	err := c.CreateFunction(ctx, model.NewObjectPath("nope", "f1"), &model.Function{ClassName: "a.B"}, false)
	assert.True(t, errors.HasCode(err, shared.CatalogNotFound))

	_, err = c.ListFunctions(ctx, "nope")
	assert.True(t, errors.HasCode(err, shared.CatalogNotFound))
}
