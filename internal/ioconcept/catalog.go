// Package ioconcept loads the semantic concept catalog from the
// concepts table. The catalog is read once per pipeline run; assignment
// itself is pure and lives in pkg/concept.
package ioconcept

import (
	"context"

	"github.com/lexgraph/lexdb/pkg/concept"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/pgvector/pgvector-go"
)

// Catalog reads concepts from the database.
type Catalog struct {
	operator db.Operator
}

// NewCatalog creates a catalog reader over a connected operator.
func NewCatalog(op db.Operator) *Catalog {
	return &Catalog{operator: op}
}

// Load returns all concepts with a centroid, ordered by id. Concepts
// without a centroid are skipped; they cannot take part in nearest
// neighbor assignment.
func (c *Catalog) Load(ctx context.Context) ([]concept.Concept, error) {
	pool := c.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	rows, err := pool.Query(ctx, `
		SELECT id, label, size, centroid
		FROM concepts
		WHERE centroid IS NOT NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, CatalogError(err)
	}
	defer rows.Close()

	var out []concept.Concept
	for rows.Next() {
		var con concept.Concept
		var centroid pgvector.Vector
		if err := rows.Scan(
			&con.ID, &con.Label, &con.Size, &centroid,
		); err != nil {
			return nil, CatalogError(err)
		}
		con.Centroid = centroid.Slice()
		out = append(out, con)
	}
	if err := rows.Err(); err != nil {
		return nil, CatalogError(err)
	}

	return out, nil
}
