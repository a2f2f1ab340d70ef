package mocks

import context "context"
import mock "github.com/stretchr/testify/mock"
import stack "github.com/AndresRojas1512/marketstat-bench/pkg/stack"
import workloads "github.com/AndresRojas1512/marketstat-bench/pkg/workloads"

// Invoker is an autogenerated mock type for the Invoker type
type Invoker struct {
	mock.Mock
}

// Run provides a mock function with given fields: ctx, handle, target
func (_m *Invoker) Run(ctx context.Context, handle *stack.Handle, target workloads.Target) workloads.RunOutcome {
	ret := _m.Called(ctx, handle, target)

	var r0 workloads.RunOutcome
	if rf, ok := ret.Get(0).(func(context.Context, *stack.Handle, workloads.Target) workloads.RunOutcome); ok {
		r0 = rf(ctx, handle, target)
	} else {
		r0 = ret.Get(0).(workloads.RunOutcome)
	}

	return r0
}
