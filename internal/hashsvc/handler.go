// handler.go - HTTP endpoints of the hashing service
package hashsvc

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-errors/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"honkdrop/field"
	"honkdrop/poseidon2"
)

// maxReduceDigits bounds the hex value accepted by /v1/reduce.
const maxReduceDigits = 1024

// routeUnmatched labels requests that match no route, so unknown paths share one
// metric series.
const routeUnmatched = "unmatched"

// Service serves the Poseidon2 hash over HTTP.
type Service struct {
	opts     Options
	perm     *poseidon2.Permutation
	metrics  *MetricsCollector
	health   *HealthChecker
	limiter  *ClientRateLimiter
	log      zerolog.Logger
	inFlight atomic.Int64
}

// New returns a service hashing with the default permutation.
func New(opts Options, log zerolog.Logger) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		opts:    opts,
		perm:    poseidon2.Default(),
		metrics: NewMetricsCollector(),
		health:  NewHealthChecker(opts.Version, poseidon2.ParameterSetVersion),
		log:     log.With().Str("component", "hashsvc").Logger(),
	}
	if opts.RateLimit.Burst > 0 {
		s.limiter = NewClientRateLimiter(opts.RateLimit.Burst, opts.RateLimit.Refill, opts.RateLimit.Period)
	}
	s.health.RegisterComponent("poseidon2", poseidon2.SelfTest)
	s.health.RegisterComponent("http", nil)
	return s, nil
}

// Metrics returns the service metrics.
func (s *Service) Metrics() *MetricsCollector { return s.metrics }

// Health returns the service health checker.
func (s *Service) Health() *HealthChecker { return s.health }

// Handler returns a router serving every endpoint.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the service endpoints on r.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/hash", s.handleHash)
		r.Post("/hash2", s.handleHashTwo)
		r.Post("/hash2/batch", s.handleHashTwoBatch)
		r.Post("/reduce", s.handleReduce)
	})
}

func (s *Service) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.metrics.SetGauge(MetricInFlight, float64(s.inFlight.Add(1)), nil)
		start := time.Now()

		defer func() {
			s.metrics.SetGauge(MetricInFlight, float64(s.inFlight.Add(-1)), nil)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			s.metrics.RecordRequest(route, status, elapsed)
			s.log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Dur("duration", elapsed).
				Msg("request served")
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Service) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(clientKey(r)) {
			s.metrics.RecordRateLimited()
			s.log.Warn().Str("client", clientKey(r)).Msg("rate limit exceeded")
			s.writeError(w, r, &requestError{
				status: http.StatusTooManyRequests,
				kind:   KindRateLimited,
				err:    errors.Errorf("rate limit exceeded"),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.health.CheckHealth()
	if h.OverallStatus != Healthy {
		s.log.Error().Str("status", string(h.OverallStatus)).Msg("health check failed")
	}
	s.respond(w, r, h.HTTPStatus(), CreateHealthResponse(h))
}

func (s *Service) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, s.metrics.GetMetricsSummary())
}

func (s *Service) handleHash(w http.ResponseWriter, r *http.Request) {
	var req HashRequest
	if err := decodeRequest(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.OutLen == 0 {
		req.OutLen = 1
	}
	if len(req.Inputs) > s.opts.MaxInputs {
		s.writeError(w, r, limitExceeded("got %d inputs, at most %d allowed", len(req.Inputs), s.opts.MaxInputs))
		return
	}
	if req.OutLen > s.opts.MaxOutLen {
		s.writeError(w, r, limitExceeded("output length %d exceeds %d", req.OutLen, s.opts.MaxOutLen))
		return
	}

	out, err := s.perm.Hash(req.Inputs, req.OutLen, req.Variable)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kind := "fixed"
	if req.Variable {
		kind = "variable"
	}
	s.metrics.RecordHash(kind, 1, req.OutLen)
	s.respond(w, r, http.StatusOK, HashResponse{Digest: out})
}

func (s *Service) handleHashTwo(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := decodeRequest(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.hashPair(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordHash("pair", 1, 1)
	s.respond(w, r, http.StatusOK, PairResponse{Digest: d})
}

func (s *Service) handleHashTwoBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeRequest(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Pairs) > s.opts.MaxBatch {
		s.writeError(w, r, limitExceeded("got %d pairs, at most %d allowed", len(req.Pairs), s.opts.MaxBatch))
		return
	}

	digests, err := s.hashPairs(r, req.Pairs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordBatch(len(req.Pairs))
	s.metrics.RecordHash("pair", len(req.Pairs), 1)
	s.respond(w, r, http.StatusOK, BatchResponse{Digests: digests})
}

// hashPairs hashes every pair with at most MaxConcurrency goroutines. Each
// goroutine builds its own sponge; only the immutable permutation is shared.
func (s *Service) hashPairs(r *http.Request, pairs []PairRequest) ([]field.Element, error) {
	digests := make([]field.Element, len(pairs))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.opts.MaxConcurrency)
	for i, p := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := s.hashPair(p)
			if err != nil {
				return err
			}
			digests[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return digests, nil
}

func (s *Service) hashPair(p PairRequest) (field.Element, error) {
	out, err := s.perm.Hash([]field.Element{p.A, p.B}, 1, false)
	if err != nil {
		return field.Element{}, err
	}
	return out[0], nil
}

func (s *Service) handleReduce(w http.ResponseWriter, r *http.Request) {
	var req ReduceRequest
	if err := decodeRequest(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Value) > maxReduceDigits {
		s.writeError(w, r, limitExceeded("value has %d characters, at most %d allowed", len(req.Value), maxReduceDigits))
		return
	}
	e, err := field.FromHexReduced(req.Value)
	if err != nil {
		s.writeError(w, r, classifyDecode(err))
		return
	}
	s.respond(w, r, http.StatusOK, ReduceResponse{Element: e})
}

func limitExceeded(format string, args ...interface{}) error {
	return &requestError{status: http.StatusRequestEntityTooLarge, kind: KindLimit, err: errors.Errorf(format, args...)}
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if err := writeResponse(w, r, status, v); err != nil {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := errorStatus(err)
	s.metrics.RecordError(kind)
	if status >= http.StatusInternalServerError {
		ev := s.log.Error().Err(err)
		var ge *errors.Error
		if errors.As(err, &ge) {
			ev = ev.Str("stack", string(ge.Stack()))
		}
		ev.Str("path", r.URL.Path).Msg("request failed")
		s.health.UpdateComponent("http", Degraded, err.Error())
	} else {
		s.log.Debug().Err(err).Str("kind", kind).Str("path", r.URL.Path).Msg("request rejected")
	}
	s.respond(w, r, status, ErrorResponse{Error: err.Error(), Kind: kind})
}
