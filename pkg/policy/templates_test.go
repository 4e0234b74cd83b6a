package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateSQL(t *testing.T) {
	sql := ObjectsPolicy.CreateSQL()

	assert.Contains(t, sql, `CREATE POLICY "Allow all operations on objects for testing" ON storage.objects`)
	assert.Contains(t, sql, "FOR ALL")
	assert.Contains(t, sql, "TO public")
	assert.Contains(t, sql, "USING (true)")
	assert.Contains(t, sql, "WITH CHECK (true)")
	assert.Contains(t, sql, "TEMPORARY test policy")
}

func TestDropSQL(t *testing.T) {
	sql := BucketsPolicy.DropSQL()

	assert.Equal(t, `DROP POLICY IF EXISTS "Allow all operations on buckets for testing" ON storage.buckets;`, sql)
}

func TestTemplatesCoverBothTables(t *testing.T) {
	relations := map[string]bool{}
	for _, tmpl := range Templates() {
		relations[tmpl.Relation()] = true
	}

	assert.True(t, relations["storage.objects"])
	assert.True(t, relations["storage.buckets"])
}
