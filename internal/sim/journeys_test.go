package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravfield/internal/config"
	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/sim"
)

func runPreset(name string) (*sim.Scene, *sim.Result) {
	cfg := config.GetPreset(name)
	Expect(cfg).NotTo(BeNil())
	sc, err := sim.FromConfig(cfg)
	Expect(err).NotTo(HaveOccurred())
	res, err := sc.Run(context.Background(), sim.RunConfig(cfg))
	Expect(err).NotTo(HaveOccurred())
	return sc, res
}

func sourceID(sc *sim.Scene, name string) field.SourceID {
	for _, id := range sc.Registry.IDs() {
		src, err := sc.Registry.Source(id)
		Expect(err).NotTo(HaveOccurred())
		if src.Name == name {
			return id
		}
	}
	Fail("no source named " + name)
	return field.NoSource
}

func eventsOf(res *sim.Result, kind string) []sim.Event {
	var out []sim.Event
	for _, ev := range res.Events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

var _ = Describe("binary transit", func() {
	var (
		sc  *sim.Scene
		res *sim.Result
	)

	BeforeEach(func() {
		sc, res = runPreset("binary")
	})

	It("hands dominance from alpha to beta at the midpoint", func() {
		changes := eventsOf(res, sim.EventDominantChanged)
		Expect(changes).To(HaveLen(2))

		acquire, handover := changes[0], changes[1]
		Expect(acquire.Prev).To(Equal(field.NoSource))
		Expect(acquire.Next).To(Equal(sourceID(sc, "alpha")))

		Expect(handover.Prev).To(Equal(sourceID(sc, "alpha")))
		Expect(handover.Next).To(Equal(sourceID(sc, "beta")))
		// Equal twins at x=0 and x=300: the probe, riding +x at 10
		// units a second from x=50, is equidistant at t=10.
		Expect(handover.T).To(BeNumerically("~", 10.0, 0.1))
	})

	It("passes through a weightless pocket around the cancellation point", func() {
		entered := eventsOf(res, sim.EventEnteredZeroG)
		exited := eventsOf(res, sim.EventExitedZeroG)
		Expect(entered).To(HaveLen(1))
		Expect(exited).To(HaveLen(1))

		// The opposing pulls cancel where dominance flips, so the
		// pocket brackets the handover.
		changes := eventsOf(res, sim.EventDominantChanged)
		handover := changes[len(changes)-1]
		Expect(entered[0].T).To(BeNumerically("<", handover.T))
		Expect(exited[0].T).To(BeNumerically(">", handover.T))

		for i, row := range res.Ticks {
			for _, tick := range row {
				if tick.ZeroG {
					Expect(tick.Mag).To(BeZero(), "tick %d", i)
				}
			}
		}
	})
})

var _ = Describe("free fall capture", func() {
	It("accelerates the probe toward the planet it is falling into", func() {
		sc, res := runPreset("single")
		Expect(sc.Registry.Len()).To(Equal(1))

		first := res.Ticks[0][0]
		early := res.Ticks[1][0]
		last := res.Ticks[len(res.Ticks)-1][0]

		Expect(first.Pos.Y()).To(Equal(300.0))
		Expect(last.Pos.Y()).To(BeNumerically("<", first.Pos.Y()))
		Expect(last.Mag).To(BeNumerically(">", early.Mag))

		// The pull points straight down the whole way, so up never
		// has to move off its initial +y.
		Expect(last.Up.Y()).To(BeNumerically("~", 1.0, 1e-9))

		Expect(eventsOf(res, sim.EventEnteredZeroG)).To(BeEmpty())
	})
})

var _ = Describe("run cancellation", func() {
	It("returns what it gathered when the context dies first", func() {
		cfg := config.GetPreset("single")
		Expect(cfg).NotTo(BeNil())
		sc, err := sim.FromConfig(cfg)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := sc.Run(ctx, sim.RunConfig(cfg))
		Expect(err).To(MatchError(context.Canceled))
		Expect(res).NotTo(BeNil())
		Expect(res.StepsTaken).To(BeZero())
		Expect(res.Times).To(HaveLen(1))
	})
})
