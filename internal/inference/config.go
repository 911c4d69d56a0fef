package inference

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding ServiceConfig fields are unset.
const (
	defaultLoadTimeout = 30 * time.Second
	jitterBand         = 0.05
)

// DeviceClass selects the candidate order. DeviceAuto probes the host.
type DeviceClass string

const (
	DeviceAuto        DeviceClass = ""
	DeviceConstrained DeviceClass = "constrained"
	DeviceStandard    DeviceClass = "standard"
)

// ServiceConfig encapsulates all tunables for Service construction.
type ServiceConfig struct {
	// ModelURL is used when Initialize is called with an empty location.
	ModelURL string
	// ModelsDir is scanned by ListModels and is the model location of last resort.
	ModelsDir string
	// LightMode skips model loading entirely and serves the heuristic.
	LightMode bool
	// DeviceUserAgent is matched against the mobile user-agent heuristic; a
	// match enables light mode.
	DeviceUserAgent string
	// Device overrides host probing for the candidate order.
	Device      DeviceClass
	LoadTimeout time.Duration

	// Runtimes maps backend kinds to loaders. Nil installs the default
	// exchange and graph runtimes (real or stub depending on build tags).
	Runtimes map[BackendKind]Runtime
	// Runtime options for the default runtimes.
	ONNXLibPath string
	Threads     int
	HTTPClient  *http.Client

	Publisher EventPublisher
	Logger    *zerolog.Logger
	// Jitter returns the heuristic perturbation; results outside
	// [-0.05, 0.05] are clamped. Nil draws uniformly from that band.
	Jitter func() float64
}

// NewWithConfig constructs a Service from ServiceConfig.
func NewWithConfig(cfg ServiceConfig) *Service {
	s := &Service{
		state:     StateUninitialized,
		modelURL:  cfg.ModelURL,
		modelsDir: cfg.ModelsDir,
		lightMode: cfg.LightMode,
		userAgent: cfg.DeviceUserAgent,
		device:    cfg.Device,
		runtimes:  cfg.Runtimes,
		publisher: cfg.Publisher,
		jitter:    cfg.Jitter,
	}
	if cfg.LoadTimeout <= 0 {
		s.loadTimeout = defaultLoadTimeout
	} else {
		s.loadTimeout = cfg.LoadTimeout
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	} else {
		s.log = zerolog.Nop()
	}
	if s.jitter == nil {
		s.jitter = func() float64 { return (rand.Float64()*2 - 1) * jitterBand }
	}
	if s.runtimes == nil {
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: s.loadTimeout}
		}
		s.runtimes = map[BackendKind]Runtime{
			BackendExchange: NewExchangeRuntime(ExchangeOptions{LibPath: cfg.ONNXLibPath, Threads: cfg.Threads, Client: client}),
			BackendGraph:    NewGraphRuntime(GraphOptions{}),
		}
	}
	s.startTime = time.Now()
	return s
}
