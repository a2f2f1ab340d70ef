package mocks

import context "context"
import mock "github.com/stretchr/testify/mock"

// Infrastructure is an autogenerated mock type for the Infrastructure type
type Infrastructure struct {
	mock.Mock
}

// Start provides a mock function with given fields: ctx
func (_m *Infrastructure) Start(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Stop provides a mock function with given fields: ctx
func (_m *Infrastructure) Stop(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
