package mocks

import mock "github.com/stretchr/testify/mock"
import report "github.com/AndresRojas1512/marketstat-bench/pkg/report"

// Sink is an autogenerated mock type for the Sink type
type Sink struct {
	mock.Mock
}

// Append provides a mock function with given fields: _a0
func (_m *Sink) Append(_a0 report.Row) error {
	ret := _m.Called(_a0)

	var r0 error
	if rf, ok := ret.Get(0).(func(report.Row) error); ok {
		r0 = rf(_a0)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
