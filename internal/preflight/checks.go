package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"shelfsort/internal/config"
	"shelfsort/internal/resolver"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minFreeGiB
// available. Audiobook folders are copied, never moved, so a full library
// volume fails mid-run without this check.
func CheckFreeSpace(name, path string, minFreeGiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}

	available := stat.Bavail * uint64(stat.Bsize)
	required := uint64(minFreeGiB) * humanize.GiByte
	detail := fmt.Sprintf("%s available, %s required", humanize.IBytes(available), humanize.IBytes(required))
	if available < required {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckResolver verifies that the metadata service is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt (no retries).
func CheckResolver(ctx context.Context, cfg *config.Config) Result {
	const name = "Metadata service"
	if cfg.AI.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := resolver.NewClient(resolver.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Referer: cfg.AI.Referer,
		Title:   cfg.AI.Title,
	}, resolver.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeResolverError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

func summarizeResolverError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (metadata service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (metadata service unreachable)"
	}
	return err.Error()
}
