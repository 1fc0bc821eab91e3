package warehouse

import "context"

type UpsertResult struct {
	Inserted  int
	Updated   int
	Unchanged int
	// Changed holds the KeyOf of every inserted or updated row.
	Changed []string
	// Accepted holds the KeyOf of every row the batch committed, unchanged
	// rows included.
	Accepted []string
}

func (r UpsertResult) Written() int {
	return r.Inserted + r.Updated
}

func (r *UpsertResult) Add(other UpsertResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	r.Changed = append(r.Changed, other.Changed...)
	r.Accepted = append(r.Accepted, other.Accepted...)
}

// Total counts every row the upsert accepted, unchanged rows included.
func (r UpsertResult) Total() int {
	return r.Inserted + r.Updated + r.Unchanged
}

// Store is the portable upsert contract every warehouse backend implements.
type Store interface {
	// UpsertBatch inserts absent keys and merges present ones, atomically for
	// the whole batch. Orphaned references abort the batch with a *LoadError
	// wrapping a *ReferentialIntegrityError.
	UpsertBatch(ctx context.Context, table Table, rows []Row) (UpsertResult, error)
	// ExistingKeys reports which of keys are present in the single-column key
	// of table, rendered with KeyString.
	ExistingKeys(ctx context.Context, table Table, keys []any) (map[string]bool, error)
	Count(ctx context.Context, table Table) (int, error)
}
