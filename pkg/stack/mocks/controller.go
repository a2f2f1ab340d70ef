package mocks

import context "context"
import mock "github.com/stretchr/testify/mock"
import stack "github.com/AndresRojas1512/marketstat-bench/pkg/stack"

// Controller is an autogenerated mock type for the Controller type
type Controller struct {
	mock.Mock
}

// Provision provides a mock function with given fields: ctx, config
func (_m *Controller) Provision(ctx context.Context, config stack.ImplementationConfig) (*stack.Handle, error) {
	ret := _m.Called(ctx, config)

	var r0 *stack.Handle
	if rf, ok := ret.Get(0).(func(context.Context, stack.ImplementationConfig) *stack.Handle); ok {
		r0 = rf(ctx, config)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*stack.Handle)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, stack.ImplementationConfig) error); ok {
		r1 = rf(ctx, config)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Teardown provides a mock function with given fields: ctx, handle
func (_m *Controller) Teardown(ctx context.Context, handle *stack.Handle) error {
	ret := _m.Called(ctx, handle)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *stack.Handle) error); ok {
		r0 = rf(ctx, handle)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
