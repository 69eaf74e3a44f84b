package blob

import (
	"context"
	"fmt"
	"os"
)

// Open selects a Store implementation using environment variables.
//
//	SAMPLEVAL_BLOB_DRIVER: fs|s3|memory (default fs)
//	SAMPLEVAL_BLOB_FS_ROOT: directory root when driver=fs (default ./reportdata)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("SAMPLEVAL_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	return OpenDriver(ctx, Driver(driver), os.Getenv("SAMPLEVAL_BLOB_FS_ROOT"))
}

// OpenDriver constructs the named driver. The root parameter only applies to
// the filesystem driver.
func OpenDriver(ctx context.Context, driver Driver, root string) (Store, error) {
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(root)
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
