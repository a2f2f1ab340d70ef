package mocks

import metrics "github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
import mock "github.com/stretchr/testify/mock"

// Uploader is an autogenerated mock type for the Uploader type
type Uploader struct {
	mock.Mock
}

// SendMetrics provides a mock function with given fields: _a0
func (_m *Uploader) SendMetrics(_a0 metrics.Record) error {
	ret := _m.Called(_a0)

	var r0 error
	if rf, ok := ret.Get(0).(func(metrics.Record) error); ok {
		r0 = rf(_a0)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
