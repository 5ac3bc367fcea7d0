package http_controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/horockey/go-toolbox/http_helpers"
	"github.com/horockey/kubeping/internal/controller/http_controller/dto"
	"github.com/horockey/kubeping/internal/processor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type HttpController struct {
	serv    *http.Server
	proc    *processor.Processor
	logger  zerolog.Logger
	metrics *metrics
}

func New(
	addr string,
	logger zerolog.Logger,
) *HttpController {
	return &HttpController{
		serv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second, //nolint: mnd
		},
		logger:  logger,
		metrics: newMetrics(),
	}
}

func (ctrl *HttpController) Metrics() []prometheus.Collector {
	return ctrl.metrics.list()
}

// Handler binds the controller to pr and returns its router.
// A nil gatherer disables /metrics.
func (ctrl *HttpController) Handler(pr *processor.Processor, gatherer prometheus.Gatherer) http.Handler {
	ctrl.proc = pr

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})

	router.HandleFunc("/members", ctrl.getMembersHandler).Methods(http.MethodGet)
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return router
}

func (ctrl *HttpController) Start(
	ctx context.Context,
	pr *processor.Processor,
	gatherer prometheus.Gatherer,
) (resErr error) {
	ctrl.serv.Handler = ctrl.Handler(pr, gatherer)

	var wg sync.WaitGroup
	defer wg.Wait()

	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
			resErr = errors.Join(resErr, fmt.Errorf("running context: %w", ctx.Err()))
		}

		sdCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := ctrl.serv.Shutdown(sdCtx); err != nil {
			resErr = errors.Join(resErr, fmt.Errorf("shutting down server: %w", err))
		}
		return resErr

	case err := <-errCh:
		return fmt.Errorf("running server: %w", err)
	}
}

func (ctrl *HttpController) getMembersHandler(w http.ResponseWriter, req *http.Request) {
	ctrl.metrics.requestsCnt.Inc()
	defer func(ts time.Time) {
		ctrl.metrics.handleTimeHist.Observe(float64(time.Since(ts)))
	}(time.Now())

	res, err := ctrl.proc.DiscoverResult(req.Context())
	if err != nil {
		ctrl.metrics.errProcessCnt.Inc()
		ctrl.logger.
			Error().
			Err(fmt.Errorf("discovering members: %w", err)).
			Send()
		_ = http_helpers.RespondWithErr(w, http.StatusServiceUnavailable, err)
		return
	}

	ctrl.metrics.successProcessCnt.Inc()
	_ = http_helpers.RespondOK(w, dto.NewMembers(ctrl.proc.Identity().Hostname, res))
}
