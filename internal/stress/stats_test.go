package stress_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/movieflix-keepalive/internal/stress"
)

var _ = Describe("Stats", func() {
	var stats *stress.Stats

	BeforeEach(func() {
		stats = stress.NewStats()
	})

	It("should summarise an empty run", func() {
		sum := stats.Summarize(time.Second)
		Expect(sum.TotalRequests).To(BeZero())
		Expect(sum.SuccessRate).To(BeZero())
		Expect(sum.Avg).To(BeZero())
		Expect(sum.Errors).To(BeEmpty())
	})

	It("should aggregate counts, latency and throughput", func() {
		for i := 1; i <= 10; i++ {
			stats.Record(stress.Sample{Operation: stress.OpBrowse, Duration: time.Duration(i) * 10 * time.Millisecond})
		}
		stats.Record(stress.Sample{
			Operation: stress.OpDetails,
			Detail:    "tt0000000",
			Duration:  time.Second,
			Err:       errors.New("unexpected status: 404"),
		})

		sum := stats.Summarize(2 * time.Second)
		Expect(sum.TotalRequests).To(Equal(11))
		Expect(sum.Successful).To(Equal(10))
		Expect(sum.Failed).To(Equal(1))
		Expect(sum.SuccessRate).To(BeNumerically("~", 90.909, 0.001))
		Expect(sum.Throughput).To(Equal(5.5))

		Expect(sum.Min).To(Equal(10 * time.Millisecond))
		Expect(sum.Max).To(Equal(100 * time.Millisecond))
		Expect(sum.Avg).To(Equal(55 * time.Millisecond))
		Expect(sum.P50).To(Equal(60 * time.Millisecond))
		Expect(sum.P95).To(Equal(100 * time.Millisecond))
		Expect(sum.P99).To(Equal(100 * time.Millisecond))

		Expect(sum.Errors).To(ConsistOf(stress.ErrorRecord{
			Operation: stress.OpDetails,
			Detail:    "tt0000000",
			Error:     "unexpected status: 404",
		}))
	})

	It("should be safe for concurrent recording", func() {
		done := make(chan struct{})
		for range 8 {
			go func() {
				defer GinkgoRecover()
				for range 100 {
					stats.Record(stress.Sample{Operation: stress.OpSearch, Duration: time.Millisecond})
				}
				done <- struct{}{}
			}()
		}
		for range 8 {
			Eventually(done).Should(Receive())
		}

		Expect(stats.Samples()).To(HaveLen(800))
	})

	DescribeTable("LatencyGrade",
		func(avg time.Duration, want stress.Grade) {
			Expect(stress.LatencyGrade(avg)).To(Equal(want))
		},
		Entry("fast", 120*time.Millisecond, stress.GradeExcellent),
		Entry("just under a second", 999*time.Millisecond, stress.GradeGood),
		Entry("one second", time.Second, stress.GradeAcceptable),
		Entry("two seconds", 2*time.Second, stress.GradePoor),
	)

	DescribeTable("SuccessGrade",
		func(rate float64, want stress.Grade) {
			Expect(stress.SuccessGrade(rate)).To(Equal(want))
		},
		Entry("perfect", 100.0, stress.GradeExcellent),
		Entry("boundary", 95.0, stress.GradeExcellent),
		Entry("good", 92.5, stress.GradeGood),
		Entry("poor", 89.9, stress.GradeNeedsImprovement),
	)
})
