package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sendo-kakeru/image-resize/internal/domain"
	"github.com/sendo-kakeru/image-resize/internal/pipeline"
	"github.com/sendo-kakeru/image-resize/internal/storage"
	"github.com/sendo-kakeru/image-resize/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Transformed responses are immutable: the same key and parameters always
// yield the same bytes, so clients may cache for a year.
const cacheControlImmutable = "public, max-age=31536000, immutable"

type objectFetcher interface {
	ReadObject(ctx context.Context, objectKey string) ([]byte, error)
}

type transformer interface {
	Transform(ctx context.Context, input []byte, params domain.TransformParams) (pipeline.Result, error)
}

type Server struct {
	logger      *log.Logger
	fetcher     objectFetcher
	processor   transformer
	usageStore  store.UsageStore
	rateLimiter RateLimiter
	metrics     *metrics
	tracer      trace.Tracer
	mux         *http.ServeMux
}

func NewServer(logger *log.Logger, fetcher objectFetcher, processor transformer, usageStore store.UsageStore, rateLimiter RateLimiter) *Server {
	s := &Server{
		logger:      logger,
		fetcher:     fetcher,
		processor:   processor,
		usageStore:  usageStore,
		rateLimiter: rateLimiter,
		metrics:     newMetrics(),
		tracer:      otel.Tracer("image-resize/api"),
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.metrics.withHTTPMetrics(s.withTracing(s.withRateLimit(s.dispatch())))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.metricsHandler())
}

// dispatch serves the transform route ahead of the mux. ServeMux redirects
// an uncleaned path to its cleaned form, so /transform/a/../b would 301 to
// /transform/b and a literal traversal sequence would never reach the key
// validator.
func (s *Server) dispatch() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.EscapedPath(), "/transform/") {
			if r.Method != http.MethodGet {
				w.Header().Set("Allow", http.MethodGet)
				writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
				return
			}
			s.handleTransform(w, r)
			return
		}
		s.mux.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	// The key is taken from the escaped path so percent-encoded sequences
	// reach the validator undecoded; ParseObjectKey decodes them itself.
	rawKey := strings.TrimPrefix(r.URL.EscapedPath(), "/transform/")

	key, err := domain.ParseObjectKey(rawKey)
	if err != nil {
		s.writeError(w, err)
		return
	}

	params, err := parseTransformQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := params.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()

	fetchCtx, fetchSpan := s.tracer.Start(ctx, "storage.read_object")
	input, err := s.fetcher.ReadObject(fetchCtx, key.String())
	if err != nil {
		fetchSpan.RecordError(err)
		fetchSpan.SetStatus(codes.Error, "fetch failed")
		fetchSpan.End()
		s.logger.Printf("fetch failed key=%s err=%v", key, err)
		s.writeError(w, err)
		return
	}
	fetchSpan.End()
	s.metrics.inputBytesTotal.Add(float64(len(input)))

	if !params.NeedsTransform() {
		// Zero-parameter requests return the stored bytes untouched; the
		// content type comes from magic-byte sniffing, not a decode.
		s.metrics.passthroughTotal.Inc()
		writeImage(w, pipeline.SniffContentType(input), input)
		return
	}

	start := time.Now()
	transformCtx, span := s.tracer.Start(ctx, "pipeline.transform")
	span.SetAttributes(
		attribute.Int("image.input_bytes", len(input)),
	)
	result, err := s.processor.Transform(transformCtx, input, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transform failed")
		span.End()
		s.metrics.transformFailuresTotal.Inc()
		s.writeError(w, err)
		return
	}
	span.SetAttributes(
		attribute.String("image.output_format", string(result.Format)),
		attribute.Int("image.output_width", result.Width),
		attribute.Int("image.output_height", result.Height),
	)
	span.SetStatus(codes.Ok, "transformed")
	span.End()

	elapsed := time.Since(start)
	s.metrics.observeTransform(result, elapsed)
	s.recordUsage(ctx, key, len(input), result, elapsed)

	writeImage(w, result.ContentType, result.Data)
}

func (s *Server) recordUsage(ctx context.Context, key domain.ObjectKey, sourceBytes int, result pipeline.Result, computeDuration time.Duration) {
	if s.usageStore == nil {
		return
	}

	computeTimeMS := computeDuration.Milliseconds()
	if computeTimeMS < 1 {
		computeTimeMS = 1
	}

	usage := domain.UsageLog{
		ObjectKey:     key.String(),
		Format:        string(result.Format),
		SourceBytes:   int64(sourceBytes),
		OutputBytes:   int64(len(result.Data)),
		OutputPixels:  int64(result.Width) * int64(result.Height),
		ComputeTimeMS: computeTimeMS,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.usageStore.CreateUsageLog(ctx, usage); err != nil {
		s.logger.Printf("usage log write failed key=%s err=%v", key, err)
	}
}

// writeError maps the error taxonomy to response statuses. Validation and
// resource-guard failures carry their message to the caller; storage and
// codec internals are logged server-side and surfaced generically.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidKey),
		errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrResolutionTooLarge),
		errors.Is(err, storage.ErrObjectTooLarge):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrObjectNotFound):
		// Deliberately generic; the key is logged server-side only.
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "object not found"})
	case errors.Is(err, domain.ErrProcessingFailed):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.logger.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func parseTransformQuery(query url.Values) (domain.TransformParams, error) {
	var params domain.TransformParams

	width, err := parseIntParam(query, "w", "width")
	if err != nil {
		return domain.TransformParams{}, err
	}
	params.Width = width

	height, err := parseIntParam(query, "h", "height")
	if err != nil {
		return domain.TransformParams{}, err
	}
	params.Height = height

	if raw := query.Get("f"); raw != "" {
		format, err := domain.ParseOutputFormat(raw)
		if err != nil {
			return domain.TransformParams{}, err
		}
		params.Format = format
	}

	quality, err := parseIntParam(query, "q", "quality")
	if err != nil {
		return domain.TransformParams{}, err
	}
	params.Quality = quality

	return params, nil
}

func parseIntParam(query url.Values, name, label string) (*int, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Errorf(domain.ErrInvalidParams, "%s must be an integer, got '%s'", label, raw)
	}
	return &parsed, nil
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControlImmutable)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
