package config_test

import "github.com/sarchlab/cachesim/sim/hooking"

type nopHook struct{}

func (*nopHook) Func(_ hooking.HookCtx) {}
