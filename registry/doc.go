// Package registry holds the in-memory registry of known keepers.
//
// KeepersRegistry is created empty at startup, shared by handle between the
// refresher (the only writer) and the request handlers, and replaced
// wholesale on every successful refresh. Contents are never merged: a
// replace discards everything that was there before. Nothing is persisted;
// a restart starts from a cold cache.
package registry
