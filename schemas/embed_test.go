package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	for _, name := range []string{"migrations/mysql.sql", "migrations/sqlite.sql"} {
		t.Run(name, func(t *testing.T) {
			content, err := Migrations.ReadFile(name)
			require.NoError(t, err)
			assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS kv_entries")
		})
	}
}
