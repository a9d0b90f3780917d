package remote

import "context"

type ClientInterface interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
	Send(ctx context.Context, method, path string, body any) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

var _ ClientInterface = (*Client)(nil)
