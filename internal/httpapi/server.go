package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dermscan/internal/inference"
	"dermscan/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Initialize(ctx context.Context, modelURL string) error
	Predict(ctx context.Context, image string) (inference.PredictionResult, error)
	ListModels() ([]types.Model, error)
	Status() types.StatusResponse
	Ready() bool
	UsingFallback() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		models, err := svc.ListModels()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Post("/initialize", func(w http.ResponseWriter, r *http.Request) {
		var req types.InitializeRequest
		if r.ContentLength != 0 {
			if !isJSON(r) {
				writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		}
		lvl := requestLogLevel(r)
		start := time.Now()
		logStart(r, lvl, "initialize")

		// Loading can outlive the request; ?wait=false returns immediately.
		if r.URL.Query().Get("wait") == "false" {
			go func() { _ = svc.Initialize(serverBaseCtx, req.ModelURL) }()
			logEnd(r, lvl, "initialize", http.StatusAccepted, start, nil)
			writeJSON(w, http.StatusAccepted, svc.Status())
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.Initialize(ctx, req.ModelURL); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			logEnd(r, lvl, "initialize", status, start, err)
			writeJSONError(w, status, err.Error())
			return
		}
		logEnd(r, lvl, "initialize", http.StatusOK, start, nil)
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Post("/predict", func(w http.ResponseWriter, r *http.Request) {
		if !isJSON(r) {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		// An empty image still goes to the service so that a call before
		// initialize reports 409 regardless of the body.
		predict(w, r, svc, req.Image)
	})

	r.Post("/predict/image", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()
		f, _, err := r.FormFile("image")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "image file is required")
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to read image")
			return
		}
		predict(w, r, svc, toDataURL(raw))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// predict runs one prediction and writes the response.
func predict(w http.ResponseWriter, r *http.Request, svc Service, image string) {
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "predict")

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if predictTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, predictTimeout)
		defer tcancel()
	}
	res, err := svc.Predict(ctx, image)
	if err != nil {
		// If context was canceled (client disconnect), just return.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusFor(err)
		logEnd(r, lvl, "predict", status, start, err)
		writeJSONError(w, status, err.Error())
		return
	}
	resp := types.PredictResponse{
		ID:            uuid.NewString(),
		Prediction:    string(res.Label),
		Confidence:    res.Confidence,
		RiskLevel:     string(res.RiskLevel),
		Source:        string(res.Source),
		UsingFallback: svc.UsingFallback(),
		Degraded:      res.Degraded,
	}
	logEnd(r, lvl, "predict", http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, resp)
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct != "" && strings.HasPrefix(strings.ToLower(ct), "application/json")
}

// toDataURL wraps raw image bytes the way a browser FileReader would.
func toDataURL(raw []byte) string {
	return "data:" + http.DetectContentType(raw) + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}
