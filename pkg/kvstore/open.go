package kvstore

import (
	"fmt"

	"github.com/AlokMahapatra26/lastmile-client/pkg/config"
)

// Open builds the Store selected by configuration.
func Open(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.FilePath)
	case "redis":
		return NewRedis(&cfg.Redis)
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", cfg.Backend)
	}
}
