package metrics_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		collector = metrics.NewCollector(100, log)
		ctx, cancel = context.WithCancel(context.Background())
		collector.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	Describe("Emit", func() {
		It("should process request events asynchronously", func() {
			collector.Emit(metrics.Event{
				Type:       metrics.EventRequestCompleted,
				Timestamp:  time.Now(),
				Route:      "service1",
				Duration:   15 * time.Millisecond,
				StatusCode: 200,
			})

			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(1)))
		})

		It("should process rate-limit events", func() {
			collector.Emit(metrics.Event{Type: metrics.EventRateLimited, Timestamp: time.Now()})

			Eventually(func() int64 {
				return collector.Snapshot().RateLimited
			}).Should(Equal(int64(1)))
		})

		It("should process proxy error events", func() {
			collector.Emit(metrics.Event{
				Type:      metrics.EventProxyError,
				Timestamp: time.Now(),
				Route:     "service1",
			})

			Eventually(func() int64 {
				return collector.Snapshot().Routes["service1"].ProxyErrors
			}).Should(Equal(int64(1)))
		})

		It("should never block when the buffer is full", func() {
			small := metrics.NewCollector(1, slog.New(slog.NewTextHandler(GinkgoWriter, nil)))
			// not started, so the channel never drains
			for i := 0; i < 10; i++ {
				small.Emit(metrics.Event{Type: metrics.EventRateLimited})
			}
		})
	})

	Describe("Handler", func() {
		It("should serve a JSON snapshot", func() {
			collector.Emit(metrics.Event{
				Type:       metrics.EventRequestCompleted,
				Timestamp:  time.Now(),
				Route:      "service1",
				Duration:   time.Millisecond,
				StatusCode: 200,
			})

			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(1)))

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			collector.Handler()(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.TotalRequests).To(Equal(int64(1)))
		})
	})
})
