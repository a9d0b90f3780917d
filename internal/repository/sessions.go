package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sales-order-service/internal/domain"
	"sales-order-service/internal/infra/kv"
)

var ErrSessionNotFound = errors.New("session not found")

// Sessions keeps one record per login under "auth:<id>".
type Sessions struct {
	local kv.Store
}

func NewSessions(local kv.Store) *Sessions {
	return &Sessions{local: local}
}

func sessionKey(id string) string {
	return string(Auth) + ":" + id
}

func (s *Sessions) Put(ctx context.Context, sess domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.local.Set(ctx, sessionKey(sess.ID), b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Sessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	b, err := s.local.Get(ctx, sessionKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.local.Delete(ctx, sessionKey(id))
}
