package models

// ObjectEvent is the bucket notification delivered when a new object lands in
// the object store. The event source is at-least-once, so the same object can
// arrive more than once.
type ObjectEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}
