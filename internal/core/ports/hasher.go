package ports

// Hasher defines the interface for computing content checksums.
//
//go:generate go run go.uber.org/mock/mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// Checksum returns the hex checksum of data.
	Checksum(data []byte) string
	// FileChecksum returns the hex checksum and size of the file at path.
	FileChecksum(path string) (string, int64, error)
}
