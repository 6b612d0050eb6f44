// Package compose builds the docker-compose deployment descriptor as a
// typed document instead of text interpolation, so service blocks are
// whole units and operator-supplied values cannot break the YAML.
package compose

// Context carries everything the renderer is allowed to look at. Render is
// pure given a Context.
type Context struct {
	Domain        string
	Timezone      string
	AcmeEmail     string
	DockerGroupID int
	IncludeTools  bool
	IncludeBot    bool
	// ProxyTLS controls whether the reverse proxy terminates TLS with an
	// ACME resolver. When false the stack is reachable over plain HTTP
	// only; the proxy service itself is always present.
	ProxyTLS bool
}

// Service mirrors the compose service schema for the fields this stack
// uses. Environment and volume fragments shared between services are not
// struct fields; they are attached as anchored nodes by the renderer.
type Service struct {
	Image       string            `yaml:"image,omitempty"`
	Build       *Build            `yaml:"build,omitempty"`
	Command     []string          `yaml:"command,omitempty"`
	Restart     string            `yaml:"restart,omitempty"`
	DependsOn   map[string]Depend `yaml:"depends_on,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Labels      []string          `yaml:"labels,omitempty"`
	Healthcheck *Healthcheck      `yaml:"healthcheck,omitempty"`
}

// Build is a compose build specification.
type Build struct {
	Context    string            `yaml:"context"`
	Dockerfile string            `yaml:"dockerfile,omitempty"`
	Args       map[string]string `yaml:"args,omitempty"`
}

// Depend is a depends_on entry with a startup condition.
type Depend struct {
	Condition string `yaml:"condition"`
}

// Healthcheck is a compose healthcheck block.
type Healthcheck struct {
	Test        []string `yaml:"test,flow"`
	Interval    string   `yaml:"interval,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	Retries     int      `yaml:"retries,omitempty"`
	StartPeriod string   `yaml:"start_period,omitempty"`
}

// Service names of the stack. The first five are always rendered; tools
// and bot are whole-unit optional blocks.
const (
	ServiceTraefik  = "traefik"
	ServicePostgres = "postgres"
	ServiceRedis    = "redis"
	ServiceN8N      = "n8n"
	ServiceWorker   = "n8n-worker"
	ServiceTools    = "n8n-tools"
	ServiceBot      = "n8n-bot"
)

// MandatoryServices are rendered regardless of flags.
var MandatoryServices = []string{
	ServiceTraefik,
	ServicePostgres,
	ServiceRedis,
	ServiceN8N,
	ServiceWorker,
}
