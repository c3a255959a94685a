package blob

import (
	"context"
	"fmt"
)

// Options selects and configures a blob driver.
type Options struct {
	Driver      Driver
	FSRoot      string
	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3PathStyle bool
}

// Open constructs the configured blob store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFilesystem, "":
		return NewFSStore(opts.FSRoot)
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Region:    opts.S3Region,
			Bucket:    opts.S3Bucket,
			Endpoint:  opts.S3Endpoint,
			PathStyle: opts.S3PathStyle,
		})
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", opts.Driver)
	}
}
