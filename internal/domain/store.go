package domain

// Store persists the whole canonical task collection. Load returns the
// collection in canonical order; a missing backing file is a first run
// and yields an empty collection, not an error. Save overwrites the
// previous contents atomically so a crash mid-write never truncates the
// store.
type Store interface {
	Load() ([]*Task, error)
	Save(tasks []*Task) error
	Close() error
}
