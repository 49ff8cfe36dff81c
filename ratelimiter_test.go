package qsim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRateLimiter(t *testing.T) {
	Convey("Given a rate limiter with a fake clock", t, func() {
		clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		rl := NewRateLimiter(3, 100*time.Millisecond)
		rl.now = func() time.Time { return clock }
		rl.lastRefill = clock

		Convey("It should admit a burst up to capacity", func() {
			for i := 0; i < 3; i++ {
				So(rl.Limit(Job{ID: "burst"}), ShouldBeNil)
			}

			err := rl.Limit(Job{ID: "excess"})
			So(errors.Is(err, ErrRateLimited), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "excess")
		})

		Convey("It should refill one token per period", func() {
			for i := 0; i < 3; i++ {
				rl.Limit(Job{})
			}
			So(rl.Tokens(), ShouldEqual, 0)

			clock = clock.Add(150 * time.Millisecond)
			So(rl.Tokens(), ShouldEqual, 1)

			// The half period left over counts towards the next token.
			clock = clock.Add(50 * time.Millisecond)
			So(rl.Tokens(), ShouldEqual, 2)
		})

		Convey("It should never exceed capacity", func() {
			clock = clock.Add(time.Hour)
			So(rl.Tokens(), ShouldEqual, 3)
		})

		Convey("Renormalize should fill the bucket", func() {
			for i := 0; i < 3; i++ {
				rl.Limit(Job{})
			}

			rl.Renormalize()
			So(rl.Tokens(), ShouldEqual, 3)
		})
	})

	Convey("Given an evaluator behind a rate limiter", t, func() {
		e := NewEvaluator(context.Background(), 1)
		e.AddRegulator(NewRateLimiter(1, time.Hour))

		Reset(func() {
			e.Close()
		})

		Convey("Only the first job of a burst runs", func() {
			job := func(context.Context) (any, error) { return "ran", nil }

			first := <-e.Schedule(job)
			second := <-e.Schedule(job)

			So(first.Error, ShouldBeNil)
			So(errors.Is(second.Error, ErrRateLimited), ShouldBeTrue)
			So(testutil.ToFloat64(e.Metrics().rejected), ShouldEqual, 1.0)
		})
	})
}
