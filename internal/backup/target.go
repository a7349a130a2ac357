package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/store/jsonfile"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
)

// Driver names accepted by SHELF_BACKUP_DRIVER.
const (
	DriverNone  = ""
	DriverRedis = "redis"
	DriverFile  = "file"
)

// Target is a secondary destination for serialized snapshots.
type Target interface {
	Put(ctx context.Context, name string, data []byte) error
	String() string
}

// RedisTarget stores each snapshot under shelf:backup:<name>.
type RedisTarget struct {
	client redis.UniversalClient
}

func NewRedisTarget(client redis.UniversalClient) *RedisTarget {
	return &RedisTarget{client: client}
}

func (t *RedisTarget) Put(ctx context.Context, name string, data []byte) error {
	if err := t.client.Set(ctx, redisstore.BackupKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write backup key: %w", err)
	}
	return nil
}

func (t *RedisTarget) String() string { return "redis" }

// FileTarget writes <dir>/<name>.json atomically.
type FileTarget struct {
	dir string
}

func NewFileTarget(dir string) *FileTarget {
	return &FileTarget{dir: dir}
}

func (t *FileTarget) Put(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(t.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	return jsonfile.WriteFileAtomic(filepath.Join(t.dir, name+".json"), data)
}

func (t *FileTarget) String() string { return "file:" + t.dir }
