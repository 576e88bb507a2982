// Package pipeline provides the two batch phases that turn a raw quote
// corpus into a static artifact tree.
//
// The Indexer normalizes the corpus, embeds every quote into a vector store
// collection, and scores keywords per category. The Materializer queries the
// store once per unique keyword and writes the per-keyword artifacts, the
// full corpus index, and the artifact directory layout. Both phases run
// their independent units of work on worker pools, track progress, and
// retry external calls with exponential backoff.
package pipeline
