package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/amirphl/ugc-creator-finder/models"
)

// creatorColumnSet parses the Creator model the way GORM does and returns
// the set of real database columns
func creatorColumnSet(t *testing.T) map[string]bool {
	t.Helper()

	parsed, err := schema.Parse(&models.Creator{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	columns := make(map[string]bool)
	for _, field := range parsed.Fields {
		if field.DBName != "" {
			columns[field.DBName] = true
		}
	}
	return columns
}

func TestUpsertColumnsExistOnCreatorModel(t *testing.T) {
	columns := creatorColumnSet(t)

	for _, col := range upsertColumns {
		assert.True(t, columns[col], "upsert column %q does not exist on the creator model", col)
	}
}

func TestUpsertColumnsNeverTouchProtectedFields(t *testing.T) {
	// id and uuid keep stored identity stable across re-ingestion;
	// post_count is only known to some sources, so a conflict update
	// must not let a sparse record zero a previously scraped value.
	for _, col := range []string{"id", "uuid", "external_id", "post_count"} {
		assert.NotContains(t, upsertColumns, col)
	}
}
