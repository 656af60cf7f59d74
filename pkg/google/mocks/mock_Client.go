// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	google "github.com/kerala-atlas/locality-cli/pkg/google"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// NearbySearch provides a mock function with given fields: ctx, lat, lng, placeType, radius
func (_m *MockClient) NearbySearch(ctx context.Context, lat float64, lng float64, placeType string, radius int) ([]google.Place, error) {
	ret := _m.Called(ctx, lat, lng, placeType, radius)

	if len(ret) == 0 {
		panic("no return value specified for NearbySearch")
	}

	var r0 []google.Place
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64, string, int) ([]google.Place, error)); ok {
		return rf(ctx, lat, lng, placeType, radius)
	}
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64, string, int) []google.Place); ok {
		r0 = rf(ctx, lat, lng, placeType, radius)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]google.Place)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, float64, float64, string, int) error); ok {
		r1 = rf(ctx, lat, lng, placeType, radius)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// TravelTime provides a mock function with given fields: ctx, originLat, originLng, destLat, destLng
func (_m *MockClient) TravelTime(ctx context.Context, originLat float64, originLng float64, destLat float64, destLng float64) (int, error) {
	ret := _m.Called(ctx, originLat, originLng, destLat, destLng)

	if len(ret) == 0 {
		panic("no return value specified for TravelTime")
	}

	var r0 int
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64, float64, float64) (int, error)); ok {
		return rf(ctx, originLat, originLng, destLat, destLng)
	}
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64, float64, float64) int); ok {
		r0 = rf(ctx, originLat, originLng, destLat, destLng)
	} else {
		r0 = ret.Get(0).(int)
	}

	if rf, ok := ret.Get(1).(func(context.Context, float64, float64, float64, float64) error); ok {
		r1 = rf(ctx, originLat, originLng, destLat, destLng)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Elevation provides a mock function with given fields: ctx, lat, lng
func (_m *MockClient) Elevation(ctx context.Context, lat float64, lng float64) (float64, error) {
	ret := _m.Called(ctx, lat, lng)

	if len(ret) == 0 {
		panic("no return value specified for Elevation")
	}

	var r0 float64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64) (float64, error)); ok {
		return rf(ctx, lat, lng)
	}
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64) float64); ok {
		r0 = rf(ctx, lat, lng)
	} else {
		r0 = ret.Get(0).(float64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, float64, float64) error); ok {
		r1 = rf(ctx, lat, lng)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
