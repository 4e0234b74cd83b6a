package policy

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Status of one template after an Apply or Remove pass.
type Status string

const (
	StatusCreated Status = "created"
	StatusExists  Status = "exists"
	StatusRemoved Status = "removed"
	StatusAbsent  Status = "absent"
)

// Result pairs a template with what happened to it.
type Result struct {
	Policy Template
	Status Status
}

// Applier applies and removes the test policies on a Postgres database.
// All operations are idempotent: applying an existing policy or removing a
// missing one is reported, not an error.
type Applier struct {
	db *gorm.DB
}

// NewApplier wraps an established connection (see pkg/db.Connect).
func NewApplier(db *gorm.DB) *Applier {
	return &Applier{db: db}
}

// exists checks pg_policies for the template.
func (a *Applier) exists(ctx context.Context, t Template) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Raw(
			`SELECT count(*) FROM pg_policies WHERE schemaname = ? AND tablename = ? AND policyname = ?`,
			t.Schema, t.Table, t.Name,
		).
		Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("policy: check %q on %s: %w", t.Name, t.Relation(), err)
	}
	return count > 0, nil
}

// Apply creates every missing test policy.
func (a *Applier) Apply(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(Templates()))
	for _, t := range Templates() {
		present, err := a.exists(ctx, t)
		if err != nil {
			return results, err
		}
		if present {
			results = append(results, Result{Policy: t, Status: StatusExists})
			continue
		}
		if err := a.db.WithContext(ctx).Exec(t.CreateSQL()).Error; err != nil {
			return results, fmt.Errorf("policy: create %q on %s: %w", t.Name, t.Relation(), err)
		}
		results = append(results, Result{Policy: t, Status: StatusCreated})
	}
	return results, nil
}

// Remove drops every test policy that is present.
func (a *Applier) Remove(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(Templates()))
	for _, t := range Templates() {
		present, err := a.exists(ctx, t)
		if err != nil {
			return results, err
		}
		if !present {
			results = append(results, Result{Policy: t, Status: StatusAbsent})
			continue
		}
		if err := a.db.WithContext(ctx).Exec(t.DropSQL()).Error; err != nil {
			return results, fmt.Errorf("policy: drop %q on %s: %w", t.Name, t.Relation(), err)
		}
		results = append(results, Result{Policy: t, Status: StatusRemoved})
	}
	return results, nil
}

// Applied reports which test policies are currently present, keyed by
// policy name.
func (a *Applier) Applied(ctx context.Context) (map[string]bool, error) {
	out := map[string]bool{}
	for _, t := range Templates() {
		present, err := a.exists(ctx, t)
		if err != nil {
			return nil, err
		}
		out[t.Name] = present
	}
	return out, nil
}
