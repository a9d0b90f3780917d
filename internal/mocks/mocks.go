package mocks

import (
	"context"

	"sales-order-service/internal/infra/remote"

	"github.com/stretchr/testify/mock"
)

type MockRemoteClient struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockRemoteClient) Fetch(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRemoteClient) Send(ctx context.Context, method, path string, body any) error {
	args := m.Called(ctx, method, path, body)
	return args.Error(0)
}

func (m *MockRemoteClient) Login(ctx context.Context, req remote.LoginRequest) (*remote.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.LoginResponse), args.Error(1)
}
