//go:build !unix

package repository

// Without flock(2) only the in-process mutex guards the file.
type fileLock struct{}

func acquireFileLock(string) (*fileLock, error) { return &fileLock{}, nil }

func (l *fileLock) release() {}
