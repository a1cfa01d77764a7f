package app

import (
	"context"

	"jotter/internal/types"
)

// AuthAPI is the identity collaborator the UI signs in through.
// *client.Client implements it.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (*types.AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*types.AuthSession, error)
	SignOut(ctx context.Context) error
	Session() *types.AuthSession
}
