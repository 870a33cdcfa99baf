package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockSQSAPIForTest creates a new mock SQSAPI for testing
func NewMockSQSAPIForTest(t *testing.T) *MockSQSAPI {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockSQSAPI(ctrl)
}

// NewMockPublisherForTest creates a new mock Publisher for testing
func NewMockPublisherForTest(t *testing.T) *MockPublisher {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockPublisher(ctrl)
}

// NewMockStoreForTest creates a new mock Store for testing
func NewMockStoreForTest(t *testing.T) *MockStore {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockStore(ctrl)
}

// NewMockSinkForTest creates a new mock chain.Sink for testing
func NewMockSinkForTest(t *testing.T) *MockSink {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockSink(ctrl)
}

// NewMockEmailAPIForTest creates a new mock EmailAPI for testing
func NewMockEmailAPIForTest(t *testing.T) *MockEmailAPI {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockEmailAPI(ctrl)
}

// NewMockS3APIForTest creates a new mock S3API for testing
func NewMockS3APIForTest(t *testing.T) *MockS3API {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockS3API(ctrl)
}
