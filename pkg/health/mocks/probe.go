package mocks

import context "context"
import mock "github.com/stretchr/testify/mock"
import stack "github.com/AndresRojas1512/marketstat-bench/pkg/stack"
import time "time"

// Probe is an autogenerated mock type for the Probe type
type Probe struct {
	mock.Mock
}

// AwaitReady provides a mock function with given fields: ctx, handle, timeout
func (_m *Probe) AwaitReady(ctx context.Context, handle *stack.Handle, timeout time.Duration) bool {
	ret := _m.Called(ctx, handle, timeout)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, *stack.Handle, time.Duration) bool); ok {
		r0 = rf(ctx, handle, timeout)
	} else {
		r0 = ret.Get(0).(bool)
	}

	return r0
}
