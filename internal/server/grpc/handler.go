package grpc

import (
	"context"

	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AccountService is the business API the handlers delegate to.
type AccountService interface {
	Create(ctx context.Context, caller models.Caller, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
	Modify(ctx context.Context, account *models.Account) (*models.Account, error)
	FindAll(ctx context.Context, search *string, page models.Page) ([]*models.Account, error)
	Find(ctx context.Context, id int64) (*models.Account, error)
	Count(ctx context.Context, search *string) (int64, error)
	FindCurrent(ctx context.Context, caller models.Caller) (*models.Account, error)
}

func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	if isInternal(err) {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "error", err)
	}
	return toStatus(err)
}

func (s *GRPCServer) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller := callerFromContext(ctx)
	s.logger.Info(ctx, "Create account request", "caller", caller.Login)

	account, err := decodeAccount(req, true)
	if err != nil {
		return nil, s.fail(ctx, "Create", err)
	}

	created, err := s.accounts.Create(ctx, caller, account)
	if err != nil {
		return nil, s.fail(ctx, "Create", err)
	}

	s.logger.Info(ctx, "Account created", "id", created.ID, "login", created.Login)
	return s.respond(ctx, "Create", created)
}

func (s *GRPCServer) Delete(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	s.logger.Info(ctx, "Delete account request", "id", req.GetValue())

	if err := s.accounts.Delete(ctx, req.GetValue()); err != nil {
		return nil, s.fail(ctx, "Delete", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Modify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := decodeAccount(req, false)
	if err != nil {
		return nil, s.fail(ctx, "Modify", err)
	}
	s.logger.Info(ctx, "Modify account request", "id", account.ID)

	saved, err := s.accounts.Modify(ctx, account)
	if err != nil {
		return nil, s.fail(ctx, "Modify", err)
	}
	return s.respond(ctx, "Modify", saved)
}

func (s *GRPCServer) FindAll(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	q, err := decodeListQuery(req)
	if err != nil {
		return nil, s.fail(ctx, "FindAll", err)
	}

	list, err := s.accounts.FindAll(ctx, q.Search, q.page())
	if err != nil {
		return nil, s.fail(ctx, "FindAll", err)
	}

	out, err := encodeAccounts(list)
	if err != nil {
		return nil, s.fail(ctx, "FindAll", err)
	}
	return out, nil
}

func (s *GRPCServer) Find(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	account, err := s.accounts.Find(ctx, req.GetValue())
	if err != nil {
		return nil, s.fail(ctx, "Find", err)
	}
	return s.respond(ctx, "Find", account)
}

func (s *GRPCServer) Count(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	q, err := decodeListQuery(req)
	if err != nil {
		return nil, s.fail(ctx, "Count", err)
	}

	n, err := s.accounts.Count(ctx, q.Search)
	if err != nil {
		return nil, s.fail(ctx, "Count", err)
	}
	return wrapperspb.Int64(n), nil
}

func (s *GRPCServer) FindCurrent(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	account, err := s.accounts.FindCurrent(ctx, callerFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, "FindCurrent", err)
	}
	return s.respond(ctx, "FindCurrent", account)
}

func (s *GRPCServer) respond(ctx context.Context, method string, a *models.Account) (*structpb.Struct, error) {
	out, err := encodeAccount(a)
	if err != nil {
		return nil, s.fail(ctx, method, err)
	}
	return out, nil
}
