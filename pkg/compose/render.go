package compose

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	anchorSharedEnv     = "n8n-shared-env"
	anchorSharedVolumes = "n8n-shared-volumes"
)

// Render produces the docker-compose.yml content for the given context.
// The shared environment and volume fragments are emitted once as YAML
// anchors and aliased from the services that use them, so the two n8n
// services can never drift apart.
func Render(ctx Context) ([]byte, error) {
	doc := mapping()

	sharedEnv := sharedEnvironment(ctx)
	sharedEnv.Anchor = anchorSharedEnv
	put(doc, "x-n8n-shared-env", sharedEnv)

	sharedVols := sequence(
		"n8n_data:/home/node/.n8n",
		"./files:/files",
		"/var/run/docker.sock:/var/run/docker.sock",
	)
	sharedVols.Anchor = anchorSharedVolumes
	put(doc, "x-n8n-shared-volumes", sharedVols)

	services := mapping()
	if err := addService(services, ServiceTraefik, traefikService(ctx)); err != nil {
		return nil, err
	}
	if err := addService(services, ServicePostgres, postgresService()); err != nil {
		return nil, err
	}
	if err := addService(services, ServiceRedis, redisService()); err != nil {
		return nil, err
	}
	if err := addService(services, ServiceN8N, n8nService(ctx), withSharedFragments()...); err != nil {
		return nil, err
	}
	if err := addService(services, ServiceWorker, workerService(ctx), withSharedFragments()...); err != nil {
		return nil, err
	}
	if ctx.IncludeTools {
		if err := addService(services, ServiceTools, toolsService()); err != nil {
			return nil, err
		}
	}
	if ctx.IncludeBot {
		if err := addService(services, ServiceBot, botService()); err != nil {
			return nil, err
		}
	}
	put(doc, "services", services)

	named := mapping()
	for _, v := range []string{"n8n_data", "postgres_data", "redis_data", "traefik_data"} {
		put(named, v, nullNode())
	}
	put(doc, "volumes", named)

	root := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("render descriptor: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("render descriptor: %w", err)
	}
	return buf.Bytes(), nil
}

// orDefault emits the compose value-or-default form. The literal default
// stays visible in the rendered file; compose substitutes it when the
// variable is unset at deployment time.
func orDefault(variable, def string) string {
	return "${" + variable + ":-" + def + "}"
}

func sharedEnvironment(ctx Context) *yaml.Node {
	proto := "https"
	if !ctx.ProxyTLS {
		proto = "http"
	}
	domain := orDefault("DOMAIN", ctx.Domain)
	tz := orDefault("GENERIC_TIMEZONE", ctx.Timezone)

	env := mapping()
	for _, kv := range [][2]string{
		{"DB_TYPE", "postgresdb"},
		{"DB_POSTGRESDB_HOST", "postgres"},
		{"DB_POSTGRESDB_PORT", "5432"},
		{"DB_POSTGRESDB_DATABASE", orDefault("POSTGRES_DB", "n8n")},
		{"DB_POSTGRESDB_USER", orDefault("POSTGRES_USER", "n8n")},
		{"DB_POSTGRESDB_PASSWORD", orDefault("POSTGRES_PASSWORD", "n8n")},
		{"EXECUTIONS_MODE", "queue"},
		{"QUEUE_BULL_REDIS_HOST", "redis"},
		{"QUEUE_BULL_REDIS_PORT", "6379"},
		{"QUEUE_HEALTH_CHECK_ACTIVE", "true"},
		{"OFFLOAD_MANUAL_EXECUTIONS_TO_WORKERS", "true"},
		{"N8N_HOST", domain},
		{"N8N_PORT", "5678"},
		{"N8N_PROTOCOL", proto},
		{"N8N_PROXY_HOPS", "1"},
		{"WEBHOOK_URL", proto + "://" + domain + "/"},
		{"N8N_EDITOR_BASE_URL", proto + "://" + domain + "/"},
		{"N8N_ENCRYPTION_KEY", "${N8N_ENCRYPTION_KEY}"},
		{"N8N_USER_MANAGEMENT_JWT_SECRET", orDefault("N8N_USER_MANAGEMENT_JWT_SECRET", "")},
		{"GENERIC_TIMEZONE", tz},
		{"TZ", orDefault("TZ", ctx.Timezone)},
		{"N8N_DIAGNOSTICS_ENABLED", "false"},
		{"N8N_PERSONALIZATION_ENABLED", "false"},
		{"N8N_RUNNERS_ENABLED", "true"},
		{"N8N_DEFAULT_BINARY_DATA_MODE", "filesystem"},
		{"N8N_COMMUNITY_PACKAGES_ALLOW_TOOL_USAGE", "true"},
		{"NODE_FUNCTION_ALLOW_BUILTIN", "*"},
		{"NODE_FUNCTION_ALLOW_EXTERNAL", "*"},
		{"N8N_LOG_LEVEL", orDefault("N8N_LOG_LEVEL", "info")},
		{"N8N_ENFORCE_SETTINGS_FILE_PERMISSIONS", "true"},
		{"N8N_GRACEFUL_SHUTDOWN_TIMEOUT", "60"},
		{"EXECUTIONS_DATA_PRUNE", "true"},
		{"EXECUTIONS_DATA_MAX_AGE", orDefault("EXECUTIONS_DATA_MAX_AGE", "336")},
	} {
		put(env, kv[0], scalar(kv[1]))
	}
	return env
}

func traefikService(ctx Context) Service {
	command := []string{
		"--providers.docker=true",
		"--providers.docker.exposedbydefault=false",
		"--entrypoints.web.address=:80",
		"--ping=true",
	}
	ports := []string{"80:80"}
	if ctx.ProxyTLS {
		command = append(command,
			"--entrypoints.websecure.address=:443",
			"--entrypoints.web.http.redirections.entrypoint.to=websecure",
			"--entrypoints.web.http.redirections.entrypoint.scheme=https",
			"--certificatesresolvers.letsencrypt.acme.email="+orDefault("ACME_EMAIL", ctx.AcmeEmail),
			"--certificatesresolvers.letsencrypt.acme.storage=/letsencrypt/acme.json",
			"--certificatesresolvers.letsencrypt.acme.httpchallenge.entrypoint=web",
		)
		ports = append(ports, "443:443")
	}
	return Service{
		Image:   "traefik:v3.1",
		Restart: "unless-stopped",
		Command: command,
		Ports:   ports,
		Volumes: []string{
			"traefik_data:/letsencrypt",
			"/var/run/docker.sock:/var/run/docker.sock:ro",
		},
		Healthcheck: &Healthcheck{
			Test:     []string{"CMD", "traefik", "healthcheck", "--ping"},
			Interval: "10s",
			Timeout:  "5s",
			Retries:  3,
		},
	}
}

func postgresService() Service {
	return Service{
		Image:   "postgres:16-alpine",
		Restart: "unless-stopped",
		Environment: map[string]string{
			"POSTGRES_DB":       orDefault("POSTGRES_DB", "n8n"),
			"POSTGRES_USER":     orDefault("POSTGRES_USER", "n8n"),
			"POSTGRES_PASSWORD": orDefault("POSTGRES_PASSWORD", "n8n"),
		},
		Volumes: []string{"postgres_data:/var/lib/postgresql/data"},
		Healthcheck: &Healthcheck{
			Test:     []string{"CMD-SHELL", "pg_isready -U ${POSTGRES_USER:-n8n} -d ${POSTGRES_DB:-n8n}"},
			Interval: "5s",
			Timeout:  "5s",
			Retries:  10,
		},
	}
}

func redisService() Service {
	return Service{
		Image:   "redis:7-alpine",
		Restart: "unless-stopped",
		Command: []string{"redis-server", "--maxmemory-policy", "noeviction"},
		Volumes: []string{"redis_data:/data"},
		Healthcheck: &Healthcheck{
			Test:     []string{"CMD", "redis-cli", "ping"},
			Interval: "5s",
			Timeout:  "5s",
			Retries:  10,
		},
	}
}

func n8nBuild(ctx Context) *Build {
	return &Build{
		Context:    ".",
		Dockerfile: "Dockerfile",
		Args: map[string]string{
			"DOCKER_GROUP_ID": strconv.Itoa(ctx.DockerGroupID),
		},
	}
}

func n8nService(ctx Context) Service {
	labels := []string{"traefik.enable=true"}
	domain := orDefault("DOMAIN", ctx.Domain)
	if ctx.ProxyTLS {
		labels = append(labels,
			"traefik.http.routers.n8n.rule=Host(`"+domain+"`)",
			"traefik.http.routers.n8n.entrypoints=websecure",
			"traefik.http.routers.n8n.tls.certresolver=letsencrypt",
		)
	} else {
		labels = append(labels,
			"traefik.http.routers.n8n.rule=Host(`"+domain+"`)",
			"traefik.http.routers.n8n.entrypoints=web",
		)
	}
	labels = append(labels, "traefik.http.services.n8n.loadbalancer.server.port=5678")

	return Service{
		Build:   n8nBuild(ctx),
		Restart: "unless-stopped",
		DependsOn: map[string]Depend{
			ServicePostgres: {Condition: "service_healthy"},
			ServiceRedis:    {Condition: "service_healthy"},
		},
		Labels: labels,
		Healthcheck: &Healthcheck{
			Test:        []string{"CMD-SHELL", "wget -qO- http://localhost:5678/healthz > /dev/null"},
			Interval:    "10s",
			Timeout:     "5s",
			Retries:     6,
			StartPeriod: "30s",
		},
	}
}

func workerService(ctx Context) Service {
	return Service{
		Build:   n8nBuild(ctx),
		Command: []string{"worker"},
		Restart: "unless-stopped",
		DependsOn: map[string]Depend{
			ServicePostgres: {Condition: "service_healthy"},
			ServiceRedis:    {Condition: "service_healthy"},
			ServiceN8N:      {Condition: "service_started"},
		},
	}
}

func toolsService() Service {
	return Service{
		Build: &Build{
			Context:    ".",
			Dockerfile: "Dockerfile.tools",
		},
		Command: []string{"tail", "-f", "/dev/null"},
		Restart: "unless-stopped",
		Volumes: []string{"./files:/files"},
	}
}

func botService() Service {
	return Service{
		Build: &Build{
			Context: "./bot",
		},
		Restart: "unless-stopped",
		Environment: map[string]string{
			"TELEGRAM_BOT_TOKEN": orDefault("TELEGRAM_BOT_TOKEN", ""),
			"TELEGRAM_CHAT_ID":   orDefault("TELEGRAM_CHAT_ID", ""),
			"N8N_BASE_URL":       "http://n8n:5678",
		},
		Volumes: []string{"/var/run/docker.sock:/var/run/docker.sock"},
	}
}
