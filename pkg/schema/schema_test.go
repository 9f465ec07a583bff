package schema_test

import (
	"testing"

	"github.com/lexgraph/lexdb/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestAllModels(t *testing.T) {
	models := schema.AllModels()
	assert.Len(t, models, 5)
}

func TestTransformLogTableName(t *testing.T) {
	assert.Equal(t, "transform_log", schema.TransformLog{}.TableName())
}

func TestVectorDDL(t *testing.T) {
	stmts := schema.VectorDDL(384)
	assert.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "vector(384)")
	assert.Contains(t, stmts[0], "records")
	assert.Contains(t, stmts[1], "concepts")
	assert.Contains(t, stmts[2], "hnsw")
}

func TestExtensionDDL(t *testing.T) {
	assert.Contains(t, schema.ExtensionDDL(), "vector")
}
