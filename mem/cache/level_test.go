package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func mustBuild(b Builder, name string) *Level {
	l, err := b.Build(name)
	Expect(err).ToNot(HaveOccurred())

	return l
}

func tagsOf(blocks []Block) []uint64 {
	tags := make([]uint64, 0, len(blocks))
	for _, b := range blocks {
		if b.Valid {
			tags = append(tags, b.Tag)
		}
	}

	return tags
}

var _ = Describe("Level", func() {
	Context("direct-mapped", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithSize(64).
				WithLineSize(16).
				WithKind(KindDirect, 1), "L1")
		})

		It("should miss on a cold line and hit afterwards", func() {
			Expect(l.Lookup(0x104)).To(BeFalse())
			Expect(l.Lookup(0x108)).To(BeTrue())

			Expect(l.Hits()).To(Equal(uint64(1)))
			Expect(l.Misses()).To(Equal(uint64(1)))
		})

		It("should not hit an empty line holding tag 0", func() {
			Expect(l.Lookup(0x0)).To(BeFalse())
		})

		It("should evict the previous tag of the same index", func() {
			Expect(l.Lookup(0x000)).To(BeFalse())
			Expect(l.Lookup(0x040)).To(BeFalse())
			Expect(l.Lookup(0x000)).To(BeFalse())

			Expect(l.Hits()).To(BeZero())
			Expect(l.Misses()).To(Equal(uint64(3)))
			Expect(l.Evictions()).To(Equal(uint64(2)))
			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{0}))
		})

		It("should keep other indexes untouched", func() {
			l.Lookup(0x010)
			l.Lookup(0x040)

			Expect(l.Lookup(0x010)).To(BeTrue())
		})

		It("should not have a replacement policy", func() {
			l = mustBuild(MakeBuilder().
				WithSize(64).
				WithLineSize(16).
				WithKind(KindDirect, 1).
				WithReplacementPolicy(PolicyLRU), "L1")

			Expect(l.Policy()).To(Equal(PolicyNone))
		})
	})

	Context("2-way set-associative with LRU", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithSize(64).
				WithLineSize(16).
				WithKind(KindSetAssociative, 2).
				WithReplacementPolicy(PolicyLRU), "L1")
		})

		It("should evict the least recently used line", func() {
			Expect(l.Lookup(0x000)).To(BeFalse())
			Expect(l.Lookup(0x020)).To(BeFalse())
			Expect(l.Lookup(0x000)).To(BeTrue())
			Expect(l.Lookup(0x040)).To(BeFalse())

			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{0, 2}))
			Expect(l.Lookup(0x000)).To(BeTrue())
			Expect(l.Lookup(0x020)).To(BeFalse())
		})

		It("should keep sets independent", func() {
			l.Lookup(0x000)
			l.Lookup(0x020)
			l.Lookup(0x010)
			l.Lookup(0x030)
			l.Lookup(0x050)

			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{0, 1}))
			Expect(tagsOf(l.Blocks(1))).To(Equal([]uint64{2, 1}))
		})
	})

	Context("2-way set-associative with LFU", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithSize(64).
				WithLineSize(16).
				WithKind(KindSetAssociative, 2).
				WithReplacementPolicy(PolicyLFU), "L1")
		})

		It("should evict the least frequently used line", func() {
			l.Lookup(0x000)
			l.Lookup(0x000)
			l.Lookup(0x000)
			l.Lookup(0x020)

			Expect(l.Lookup(0x040)).To(BeFalse())

			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{0, 2}))
			Expect(l.Lookup(0x000)).To(BeTrue())
		})

		It("should count fills as uses", func() {
			l.Lookup(0x000)
			l.Lookup(0x020)
			l.Lookup(0x000)
			l.Lookup(0x040)

			l.Lookup(0x060)

			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{3, 2}))
		})
	})

	Context("4-way set-associative with round-robin", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithSize(64).
				WithLineSize(16).
				WithKind(KindSetAssociative, 4).
				WithReplacementPolicy(PolicyRoundRobin), "L1")
		})

		It("should fill ways in order and then evict way 0", func() {
			for _, addr := range []uint64{0x00, 0x10, 0x20, 0x30} {
				Expect(l.Lookup(addr)).To(BeFalse())
			}
			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{0, 1, 2, 3}))

			Expect(l.Lookup(0x30)).To(BeTrue())
			Expect(l.Lookup(0x00)).To(BeTrue())

			Expect(l.Lookup(0x40)).To(BeFalse())
			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{4, 1, 2, 3}))

			Expect(l.Lookup(0x50)).To(BeFalse())
			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{4, 5, 2, 3}))
			Expect(l.Evictions()).To(Equal(uint64(2)))
		})
	})

	Context("fully-associative", func() {
		It("should use every line before evicting", func() {
			l := mustBuild(MakeBuilder().
				WithSize(64).
				WithLineSize(16).
				WithKind(KindFull, 0).
				WithReplacementPolicy(PolicyLRU), "L1")

			for _, addr := range []uint64{0x000, 0x100, 0x200, 0x300} {
				Expect(l.Lookup(addr)).To(BeFalse())
			}
			Expect(l.Evictions()).To(BeZero())

			l.Lookup(0x000)
			l.Lookup(0x400)

			Expect(tagsOf(l.Blocks(0))).To(Equal([]uint64{0x00, 0x40, 0x20, 0x30}))
		})

		It("should default to round-robin", func() {
			l := mustBuild(MakeBuilder().
				WithSize(32).
				WithLineSize(16).
				WithKind(KindFull, 0).
				WithReplacementPolicy(PolicyNone), "L1")

			Expect(l.Policy()).To(Equal(PolicyRoundRobin))
		})
	})

	It("should never decrease its counters", func() {
		l := mustBuild(MakeBuilder().
			WithSize(128).
			WithLineSize(16).
			WithKind(KindSetAssociative, 2).
			WithReplacementPolicy(PolicyLFU), "L1")

		var hits, misses uint64
		for i := range uint64(200) {
			l.Lookup((i * 0x9e37) % 0x400)

			Expect(l.Hits()).To(BeNumerically(">=", hits))
			Expect(l.Misses()).To(BeNumerically(">=", misses))
			Expect(l.Hits() + l.Misses()).To(Equal(i + 1))

			hits, misses = l.Hits(), l.Misses()
		}
	})

	It("should forget everything on reset", func() {
		l := mustBuild(MakeBuilder().
			WithSize(64).
			WithLineSize(16).
			WithKind(KindSetAssociative, 2).
			WithReplacementPolicy(PolicyLRU), "L1")
		l.Lookup(0x000)
		l.Lookup(0x000)

		l.Reset()

		Expect(l.Hits()).To(BeZero())
		Expect(l.Misses()).To(BeZero())
		Expect(l.Lookup(0x000)).To(BeFalse())
	})

	It("should describe itself", func() {
		l := mustBuild(MakeBuilder().
			WithSize(1024).
			WithLineSize(64).
			WithKind(KindSetAssociative, 2).
			WithReplacementPolicy(PolicyLFU), "L2")

		Expect(l.String()).To(Equal(
			"Cache: L2, Line Size: 64, Number of lines: 16, Size: 1024, " +
				"Kind: 2way, Policy: lfu"))
	})
})
