package mocks

import context "context"
import metrics "github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
import mock "github.com/stretchr/testify/mock"
import time "time"

// QueryService is an autogenerated mock type for the QueryService type
type QueryService struct {
	mock.Mock
}

// Query provides a mock function with given fields: ctx, expr, at
func (_m *QueryService) Query(ctx context.Context, expr string, at time.Time) (float64, error) {
	ret := _m.Called(ctx, expr, at)

	var r0 float64
	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time) float64); ok {
		r0 = rf(ctx, expr, at)
	} else {
		r0 = ret.Get(0).(float64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, time.Time) error); ok {
		r1 = rf(ctx, expr, at)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// QueryRange provides a mock function with given fields: ctx, expr, start, end, step
func (_m *QueryService) QueryRange(ctx context.Context, expr string, start time.Time, end time.Time, step time.Duration) ([]metrics.Sample, error) {
	ret := _m.Called(ctx, expr, start, end, step)

	var r0 []metrics.Sample
	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time, time.Time, time.Duration) []metrics.Sample); ok {
		r0 = rf(ctx, expr, start, end, step)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]metrics.Sample)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, time.Time, time.Time, time.Duration) error); ok {
		r1 = rf(ctx, expr, start, end, step)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
