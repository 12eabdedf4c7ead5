package playback_test

import (
	"math/rand"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/playback"
	"github.com/san-kum/algoviz/internal/trace"
)

const tick = playback.DefaultSpeed

var _ = Describe("Controller", func() {
	var (
		clock *manualClock
		c     *playback.Controller
	)

	// [1, 2, 3] sorts in one pass: start, two comparisons, end.
	sorted := []int{1, 2, 3}

	newController := func(data []int, opts ...playback.Option) *playback.Controller {
		return playback.New(data, algo.Sorting, append([]playback.Option{playback.WithScheduler(clock)}, opts...)...)
	}

	BeforeEach(func() {
		clock = &manualClock{}
		c = newController(sorted)
	})

	AfterEach(func() {
		c.Close()
	})

	Describe("a new session", func() {
		It("starts idle at the first step", func() {
			st := c.Snapshot()
			Expect(st.Cursor).To(Equal(0))
			Expect(st.StepCount).To(Equal(4))
			Expect(st.Playing).To(BeFalse())
			Expect(st.Phase).To(Equal(playback.IdleAtStart))
			Expect(st.PhaseName).To(Equal("idle-at-start"))
			Expect(st.Speed).To(Equal(playback.DefaultSpeed))
			Expect(st.SpeedMs).To(BeEquivalentTo(300))
			Expect(st.Step.Array).To(Equal(sorted))
			Expect(clock.Active()).To(BeZero())
		})

		It("serves exactly the generated steps", func() {
			data := []int{5, 3, 8, 1}
			c = newController(data)
			Expect(c.Steps().Equal(algo.Generate(data, algo.Sorting))).To(BeTrue())
		})

		It("does not alias the caller's slice", func() {
			data := []int{3, 1}
			c = newController(data)
			data[0] = 99
			Expect(c.Snapshot().Input).To(Equal([]int{3, 1}))
			Expect(c.Current().Array).To(Equal([]int{3, 1}))
		})
	})

	Describe("Play", func() {
		It("advances one step per tick", func() {
			c.Play()
			Expect(c.Phase()).To(Equal(playback.Playing))
			Expect(clock.Active()).To(Equal(1))

			clock.Advance(tick - time.Millisecond)
			Expect(c.Cursor()).To(Equal(0))
			clock.Advance(time.Millisecond)
			Expect(c.Cursor()).To(Equal(1))
			clock.Advance(tick)
			Expect(c.Cursor()).To(Equal(2))
		})

		It("stops on the tick after reaching the last step", func() {
			c.Play()
			clock.Advance(3 * tick)
			Expect(c.Cursor()).To(Equal(3))
			Expect(c.Playing()).To(BeTrue())

			clock.Advance(tick)
			Expect(c.Cursor()).To(Equal(3))
			Expect(c.Playing()).To(BeFalse())
			Expect(c.Phase()).To(Equal(playback.IdleAtEnd))
			Expect(clock.Active()).To(BeZero())
		})

		It("restarts from the first step when at the end", func() {
			for range 3 {
				c.StepForward()
			}
			Expect(c.Phase()).To(Equal(playback.IdleAtEnd))

			c.Play()
			Expect(c.Cursor()).To(Equal(0))
			Expect(c.Playing()).To(BeTrue())
		})

		It("is a no-op while already playing", func() {
			c.Play()
			clock.Advance(tick)
			c.Play()
			Expect(c.Cursor()).To(Equal(1))
			Expect(clock.Active()).To(Equal(1))
		})

		It("is a no-op for a single-step trace", func() {
			c = newController([]int{7})
			c.Play()
			Expect(c.Playing()).To(BeFalse())
			Expect(clock.Active()).To(BeZero())
			Expect(c.Phase()).To(Equal(playback.IdleAtStart))
		})
	})

	Describe("Pause", func() {
		It("keeps the cursor and cancels the pending tick", func() {
			c.Play()
			clock.Advance(tick)
			c.Pause()
			Expect(c.Cursor()).To(Equal(1))
			Expect(c.Phase()).To(Equal(playback.IdleMid))
			Expect(clock.Active()).To(BeZero())

			clock.Advance(10 * tick)
			Expect(c.Cursor()).To(Equal(1))
		})

		It("toggles back into playing", func() {
			c.Toggle()
			Expect(c.Playing()).To(BeTrue())
			c.Toggle()
			Expect(c.Playing()).To(BeFalse())
		})
	})

	Describe("manual stepping", func() {
		It("clamps at both ends", func() {
			c.StepBackward()
			Expect(c.Cursor()).To(Equal(0))
			for range 10 {
				c.StepForward()
			}
			Expect(c.Cursor()).To(Equal(3))
			c.StepBackward()
			Expect(c.Cursor()).To(Equal(2))
		})

		It("is ignored while playing", func() {
			c.Play()
			c.StepForward()
			Expect(c.Cursor()).To(Equal(0))
			clock.Advance(tick)
			c.StepBackward()
			Expect(c.Cursor()).To(Equal(1))
		})
	})

	Describe("Reset", func() {
		It("rewinds and stops", func() {
			c.Play()
			clock.Advance(2 * tick)
			c.Reset()
			Expect(c.Cursor()).To(Equal(0))
			Expect(c.Playing()).To(BeFalse())
			Expect(clock.Active()).To(BeZero())
		})
	})

	Describe("SetSpeed", func() {
		It("rejects non-positive delays", func() {
			Expect(c.SetSpeed(0)).To(MatchError(playback.ErrInvalidSpeed))
			Expect(c.SetSpeed(-time.Second)).To(MatchError(playback.ErrInvalidSpeed))
			Expect(c.Speed()).To(Equal(playback.DefaultSpeed))
		})

		It("applies from the next scheduled tick", func() {
			c.Play()
			Expect(c.SetSpeed(100 * time.Millisecond)).To(Succeed())

			clock.Advance(100 * time.Millisecond)
			Expect(c.Cursor()).To(Equal(0))
			clock.Advance(200 * time.Millisecond)
			Expect(c.Cursor()).To(Equal(1))
			Expect(clock.LastDelay()).To(Equal(100 * time.Millisecond))

			clock.Advance(100 * time.Millisecond)
			Expect(c.Cursor()).To(Equal(2))
		})

		It("is honoured by WithSpeed", func() {
			c = newController(sorted, playback.WithSpeed(50*time.Millisecond))
			c.Play()
			Expect(clock.LastDelay()).To(Equal(50 * time.Millisecond))
		})
	})

	Describe("regeneration", func() {
		It("SetInput parses, regenerates and resets", func() {
			c.Play()
			clock.Advance(tick)

			c.SetInput("2, x, 1")
			Expect(c.Playing()).To(BeFalse())
			Expect(c.Cursor()).To(Equal(0))
			Expect(clock.Active()).To(BeZero())
			Expect(c.Snapshot().Input).To(Equal([]int{2, 1}))
			Expect(c.StepCount()).To(Equal(5))

			clock.Advance(10 * tick)
			Expect(c.Cursor()).To(Equal(0))
		})

		It("SetAlgorithm falls back to a single snapshot for unimplemented algorithms", func() {
			c.StepForward()
			c.SetAlgorithm(algo.Graph)
			Expect(c.Algorithm()).To(Equal(algo.Graph))
			Expect(c.StepCount()).To(Equal(1))
			Expect(c.Current().Array).To(Equal(sorted))
			Expect(c.Current().HasMarkers()).To(BeFalse())

			c.Play()
			Expect(c.Playing()).To(BeFalse())
		})

		It("accepts a custom generator", func() {
			calls := 0
			gen := func(data []int, _ algo.Algorithm) trace.Trace {
				calls++
				return trace.Trace{trace.Snapshot(data, nil, nil), trace.Snapshot(data, nil, nil)}
			}
			c = newController([]int{4}, playback.WithGenerator(gen))
			c.SetData([]int{1, 2})
			Expect(calls).To(Equal(2))
			Expect(c.StepCount()).To(Equal(2))
		})
	})

	Describe("stale callbacks", func() {
		It("drops a callback that escaped cancellation", func() {
			clock.leaky = true
			c.Play()
			c.Pause()
			c.Play()

			clock.Advance(tick)
			Expect(c.Cursor()).To(Equal(1))
		})

		It("drops callbacks after Reset", func() {
			clock.leaky = true
			c.Play()
			c.Reset()
			clock.Advance(5 * tick)
			Expect(c.Cursor()).To(Equal(0))
			Expect(c.Playing()).To(BeFalse())
		})
	})

	Describe("Close", func() {
		It("cancels the timer and ignores further commands", func() {
			c.Play()
			c.Close()
			Expect(clock.Active()).To(BeZero())
			Expect(c.Playing()).To(BeFalse())

			c.Play()
			c.StepForward()
			Expect(c.Playing()).To(BeFalse())
			Expect(c.Cursor()).To(Equal(0))
			Expect(c.SetSpeed(time.Second)).To(MatchError(playback.ErrClosed))
		})

		It("is idempotent", func() {
			c.Close()
			Expect(c.Close).NotTo(Panic())
		})
	})

	Describe("OnChange", func() {
		It("reports each change", func() {
			var seen []playback.State
			c.OnChange(func(st playback.State) { seen = append(seen, st) })

			c.StepForward()
			c.StepForward()
			c.StepBackward()
			c.StepBackward() // at start, no change
			Expect(seen).To(HaveLen(3))
			Expect(seen[1].Cursor).To(Equal(2))
			Expect(seen[2].Phase).To(Equal(playback.IdleMid))
		})

		It("may call back into the controller", func() {
			var cursors []int
			c.OnChange(func(playback.State) { cursors = append(cursors, c.Cursor()) })
			c.Play()
			clock.Advance(2 * tick)
			Expect(cursors).To(Equal([]int{0, 1, 2}))
		})
	})

	It("keeps the cursor in range under random commands", func() {
		rng := rand.New(rand.NewSource(11))
		c = newController([]int{5, 3, 8, 1, 9})
		n := c.StepCount()
		for range 500 {
			switch rng.Intn(7) {
			case 0:
				c.Play()
			case 1:
				c.Pause()
			case 2:
				c.StepForward()
			case 3:
				c.StepBackward()
			case 4:
				c.Reset()
			case 5:
				Expect(c.SetSpeed(time.Duration(rng.Intn(500)+1) * time.Millisecond)).To(Succeed())
			case 6:
				clock.Advance(time.Duration(rng.Intn(1000)) * time.Millisecond)
			}
			st := c.Snapshot()
			Expect(st.Cursor).To(BeNumerically(">=", 0))
			Expect(st.Cursor).To(BeNumerically("<", n))
			if !st.Playing {
				Expect(clock.Active()).To(BeZero())
			} else {
				Expect(clock.Active()).To(Equal(1))
			}
		}
	})
})

var _ = Describe("Controller on the system scheduler", func() {
	It("plays a trace through to the end", func() {
		c := playback.New([]int{2, 1}, algo.Sorting, playback.WithSpeed(time.Millisecond))
		defer c.Close()

		var mu sync.Mutex
		var last playback.State
		c.OnChange(func(st playback.State) {
			mu.Lock()
			last = st
			mu.Unlock()
		})
		c.Play()

		Eventually(func() bool { return c.Playing() }, time.Second).Should(BeFalse())
		Expect(c.Cursor()).To(Equal(4))
		Expect(c.Current().Array).To(Equal([]int{1, 2}))

		mu.Lock()
		defer mu.Unlock()
		Expect(last.Phase).To(Equal(playback.IdleAtEnd))
	})
})
