package store

// Storer is the lifecycle every store follows
type Storer interface {
	Init() error
	Close() error
}
