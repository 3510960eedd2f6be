package memory

import "errors"

var (
	// ErrStorageOpen means the store directory could not be opened or created.
	ErrStorageOpen = errors.New("open memory storage")

	// ErrStorageWrite means a collection could not be deleted, created or written.
	ErrStorageWrite = errors.New("write memory storage")

	// ErrBackupWrite means the previous collection could not be backed up.
	// Nothing was deleted.
	ErrBackupWrite = errors.New("write memory backup")

	// ErrEmbedding means the embedder failed. The store was not touched.
	ErrEmbedding = errors.New("embed memory")
)
