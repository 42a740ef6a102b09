/*
Package store implements persisted collections of inventory items:
the source store and the per-category stores.

A store is a single file of records. Category stores only grow by
appending (see Appender) and are rewritten by Sweep, which drops expired
items and replaces the file only after the new content was fully written.

	s := store.New("data", codec.Text)
	n, err := s.Count("ListaFrutas") // 0, nil if it doesn't exist
	stats, err := s.Sweep("ListaFrutas")
*/
package store
