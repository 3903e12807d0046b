package ratelimit_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/ratelimit"
)

func TestRatelimit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ratelimit Suite")
}

var _ = Describe("Limiter", func() {
	Describe("Admit", func() {
		It("should admit requests up to the limit", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 5)

			for i := 0; i < 5; i++ {
				Expect(limiter.Admit("client-a")).To(BeTrue())
			}
		})

		It("should reject the request over the limit", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 5)

			for i := 0; i < 5; i++ {
				limiter.Admit("client-a")
			}

			Expect(limiter.Admit("client-a")).To(BeFalse())
		})

		It("should keep rejecting for the rest of the window", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 2)

			limiter.Admit("client-a")
			limiter.Admit("client-a")

			Expect(limiter.Admit("client-a")).To(BeFalse())
			Expect(limiter.Admit("client-a")).To(BeFalse())
		})

		It("should admit again after the window elapses", func() {
			limiter := ratelimit.NewLimiter(50*time.Millisecond, 1)

			Expect(limiter.Admit("client-a")).To(BeTrue())
			Expect(limiter.Admit("client-a")).To(BeFalse())

			time.Sleep(60 * time.Millisecond)

			Expect(limiter.Admit("client-a")).To(BeTrue())
		})

		It("should count keys independently", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 1)

			Expect(limiter.Admit("client-a")).To(BeTrue())
			Expect(limiter.Admit("client-b")).To(BeTrue())
			Expect(limiter.Admit("client-a")).To(BeFalse())
			Expect(limiter.Admit("client-b")).To(BeFalse())
		})

		It("should stay consistent under concurrent admissions for one key", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 50)

			var wg sync.WaitGroup
			var admitted int64
			var mu sync.Mutex

			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if limiter.Admit("client-a") {
						mu.Lock()
						admitted++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Expect(admitted).To(Equal(int64(50)))
		})

		It("should not contend across distinct keys", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 1)

			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					Expect(limiter.Admit(fmt.Sprintf("client-%d", i))).To(BeTrue())
				}(i)
			}
			wg.Wait()
		})
	})

	Describe("RetryAfter", func() {
		It("should return zero for an unknown key", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 1)
			Expect(limiter.RetryAfter("nobody")).To(BeZero())
		})

		It("should return the remaining window for an active key", func() {
			limiter := ratelimit.NewLimiter(time.Minute, 1)
			limiter.Admit("client-a")

			remaining := limiter.RetryAfter("client-a")
			Expect(remaining).To(BeNumerically(">", 0))
			Expect(remaining).To(BeNumerically("<=", time.Minute))
		})
	})

	Describe("accessors", func() {
		It("should expose the configured limit and window", func() {
			limiter := ratelimit.NewLimiter(15*time.Minute, 100)
			Expect(limiter.Limit()).To(Equal(100))
			Expect(limiter.Window()).To(Equal(15 * time.Minute))
		})
	})
})
