package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHook struct {
	name  string
	order *[]string
}

func (h *recordingHook) Func(ctx HookCtx) {
	*h.order = append(*h.order, h.name+":"+ctx.Pos.Name)
}

var _ = Describe("HookableBase", func() {
	var (
		base  *HookableBase
		order []string
		pos   *HookPos
	)

	BeforeEach(func() {
		base = &HookableBase{}
		order = nil
		pos = &HookPos{Name: "Access"}
	})

	It("should invoke hooks in registration order", func() {
		base.AcceptHook(&recordingHook{name: "a", order: &order})
		base.AcceptHook(&recordingHook{name: "b", order: &order})

		base.InvokeHook(HookCtx{Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(order).To(Equal([]string{"a:Access", "b:Access"}))
	})

	It("should panic on a duplicated hook", func() {
		hook := &recordingHook{name: "a", order: &order}
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})
})
