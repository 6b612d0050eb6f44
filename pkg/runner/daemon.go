package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/client"

	"github.com/n8nkit/n8nctl/pkg/log"
)

// PingDaemon verifies the Docker daemon is reachable through the engine
// API. API version is negotiated; a "client too new" mismatch retries
// once with the fallback version.
func PingDaemon(ctx context.Context, fallbackVersion string, logger log.Logger) error {
	if logger == nil {
		logger = log.GetDefaultLogger().WithComponent("docker")
	}

	dockerClient, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	defer dockerClient.Close()

	negCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	dockerClient.NegotiateAPIVersion(negCtx)
	logger.Debug("negotiated docker API version", log.Str("api_version", dockerClient.ClientVersion()))

	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	defer pingCancel()
	_, err = dockerClient.Ping(pingCtx)
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "client version") && strings.Contains(err.Error(), "too new") {
		logger.Warn("docker API version mismatch, falling back",
			log.Str("fallback_version", fallbackVersion),
			log.Err(err))

		fallback, cerr := client.NewClientWithOpts(client.FromEnv, client.WithVersion(fallbackVersion))
		if cerr != nil {
			return fmt.Errorf("create docker client with fallback version %s: %w", fallbackVersion, cerr)
		}
		defer fallback.Close()

		retryCtx, retryCancel := context.WithTimeout(ctx, 2*time.Second)
		defer retryCancel()
		if _, err := fallback.Ping(retryCtx); err != nil {
			return fmt.Errorf("docker daemon unreachable: %w", err)
		}
		return nil
	}

	return fmt.Errorf("docker daemon unreachable: %w", err)
}
