package policy

import "fmt"

// Template is one of the permissive row-level-security policies the test
// environment needs. Each grants every operation to the public role with
// USING (true) WITH CHECK (true). Deliberately wide open, and only meant
// to live for the duration of a test run.
type Template struct {
	// Name is the quoted policy name as it appears in pg_policies.
	Name string

	// Schema and Table locate the relation the policy attaches to.
	Schema string
	Table  string
}

// The two test policies: blanket access to objects and buckets.
var (
	ObjectsPolicy = Template{
		Name:   "Allow all operations on objects for testing",
		Schema: "storage",
		Table:  "objects",
	}

	BucketsPolicy = Template{
		Name:   "Allow all operations on buckets for testing",
		Schema: "storage",
		Table:  "buckets",
	}
)

// Templates returns the policies in apply order.
func Templates() []Template {
	return []Template{ObjectsPolicy, BucketsPolicy}
}

// Relation returns the schema-qualified table name.
func (t Template) Relation() string {
	return t.Schema + "." + t.Table
}

// CreateSQL renders the CREATE POLICY statement. The leading comment marks
// the policy as temporary so it is recognizable in a pg_dump.
func (t Template) CreateSQL() string {
	return fmt.Sprintf(
		"-- TEMPORARY test policy, remove after the test run\n"+
			"CREATE POLICY %q ON %s\n"+
			"    FOR ALL\n"+
			"    TO public\n"+
			"    USING (true)\n"+
			"    WITH CHECK (true);",
		t.Name, t.Relation(),
	)
}

// DropSQL renders the matching DROP POLICY statement.
func (t Template) DropSQL() string {
	return fmt.Sprintf("DROP POLICY IF EXISTS %q ON %s;", t.Name, t.Relation())
}
