// Package memory keeps a local, embedded copy of a pulled memory space.
//
// A pull replaces the "short_term" collection wholesale: the payload's
// episodic and character text is chunked, embedded and written as records.
// Any previous collection is first saved to a JSON backup next to the store.
//
// Architecture:
//   - CollectionStore: named vector collections (chromem-go on disk)
//   - Embedder: batch text-to-vector conversion (mock, ONNX, Ollama, OpenAI)
//   - Synchronizer: the backup, delete, rebuild cycle
//   - Retriever: similarity search over the rebuilt collection
//
// The package takes no locks. Callers serialize syncs per storage directory.
package memory
