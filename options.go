package collective

// Option configures a Session with optional dependencies.
type Option func(*sessionOptions)

// sessionOptions holds optional Session configuration.
type sessionOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	host    string
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewSession
//
// Example:
//
//	hooks := &collective.Hooks{
//	    OnPhaseChanged: func(ctx context.Context, from, to collective.Phase) error {
//	        log.Printf("%s -> %s", from, to)
//	        return nil
//	    },
//	}
//	sess, err := collective.NewSession(cfg, tr, collective.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *sessionOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewSession
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *sessionOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for NewSession
func WithLogger(logger Logger) Option {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// WithHost overrides the host label reported in the participant identity.
//
// By default the label is os.Hostname(). Participants sharing one process
// use distinct labels to stay distinguishable in the report.
//
// Parameters:
//   - host: Host label
//
// Returns:
//   - Option: Functional option for NewSession
func WithHost(host string) Option {
	return func(o *sessionOptions) {
		o.host = host
	}
}
