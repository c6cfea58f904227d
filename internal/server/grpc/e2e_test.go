package grpc

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/logging"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeAccounts struct {
	caller  models.Caller
	account *models.Account
	search  *string
	page    models.Page
	deleted int64

	out   *models.Account
	list  []*models.Account
	count int64
	err   error
}

func (f *fakeAccounts) Create(_ context.Context, caller models.Caller, a *models.Account) (*models.Account, error) {
	f.caller, f.account = caller, a
	if f.err != nil {
		return nil, f.err
	}
	a.ID = 100
	a.Password = "hashed"
	a.Roles = []models.Role{{ID: 1, Name: common.RoleUser}}
	return a, nil
}

func (f *fakeAccounts) Delete(_ context.Context, id int64) error {
	f.deleted = id
	return f.err
}

func (f *fakeAccounts) Modify(_ context.Context, a *models.Account) (*models.Account, error) {
	f.account = a
	if f.err != nil {
		return nil, f.err
	}
	return a, nil
}

func (f *fakeAccounts) FindAll(_ context.Context, search *string, page models.Page) ([]*models.Account, error) {
	f.search, f.page = search, page
	return f.list, f.err
}

func (f *fakeAccounts) Find(_ context.Context, id int64) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeAccounts) Count(_ context.Context, search *string) (int64, error) {
	f.search = search
	return f.count, f.err
}

func (f *fakeAccounts) FindCurrent(_ context.Context, caller models.Caller) (*models.Account, error) {
	f.caller = caller
	if f.err != nil {
		return nil, f.err
	}
	return &models.Account{ID: 5, Login: caller.Login}, nil
}

func startBufconn(t *testing.T, accounts AccountService) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop{}, accounts, testSecret)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return conn
}

func outgoing(t *testing.T, login string, roles ...string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tokenFor(t, login, roles...))
}

func TestE2E_AnonymousCreate(t *testing.T) {
	fake := &fakeAccounts{}
	client := NewAccountsClient(startBufconn(t, fake))

	in, err := structpb.NewStruct(map[string]any{
		"login":    "alice@example.com",
		"password": "secret",
		"address":  map[string]any{"countryIso3Code": "FRA"},
	})
	require.NoError(t, err)

	out, err := client.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.Caller{}, fake.caller)
	assert.Equal(t, "secret", fake.account.Password)
	m := out.AsMap()
	assert.Equal(t, float64(100), m["id"])
	assert.Equal(t, []any{"user"}, m["roles"])
	assert.NotContains(t, m, "password")
}

func TestE2E_CreateErrors(t *testing.T) {
	fake := &fakeAccounts{err: common.ErrorConflict}
	client := NewAccountsClient(startBufconn(t, fake))

	in, _ := structpb.NewStruct(map[string]any{"login": "alice@example.com", "password": "secret"})
	_, err := client.Create(context.Background(), in)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	bad, _ := structpb.NewStruct(map[string]any{"login": "alice"})
	_, err = client.Create(context.Background(), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	withZeroID, _ := structpb.NewStruct(map[string]any{"id": 0, "login": "alice@example.com", "password": "secret"})
	fake.account = nil
	_, err = client.Create(context.Background(), withZeroID)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Nil(t, fake.account, "rejected before reaching the service")

	fake.err = fmt.Errorf("%w: role %q missing", common.ErrorInternal, common.RoleUser)
	_, err = client.Create(context.Background(), in)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestE2E_AdminOperations(t *testing.T) {
	fake := &fakeAccounts{
		out:   &models.Account{ID: 42, Login: "bob@example.com"},
		list:  []*models.Account{{ID: 1, Login: "a@example.com"}, {ID: 2, Login: "b@example.com"}},
		count: 2,
	}
	client := NewAccountsClient(startBufconn(t, fake))
	ctx := outgoing(t, "root@example.com", common.RoleAdmin)

	_, err := client.Delete(ctx, wrapperspb.Int64(42))
	require.NoError(t, err)
	assert.EqualValues(t, 42, fake.deleted)

	found, err := client.Find(ctx, wrapperspb.Int64(42))
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", found.AsMap()["login"])

	q, _ := structpb.NewStruct(map[string]any{"search": "ex", "start": 0, "size": 10})
	list, err := client.FindAll(ctx, q)
	require.NoError(t, err)
	assert.Len(t, list.GetValues(), 2)
	require.NotNil(t, fake.search)
	assert.Equal(t, "ex", *fake.search)
	assert.Equal(t, 10, *fake.page.Size)

	n, err := client.Count(ctx, &structpb.Struct{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n.GetValue())
	assert.Nil(t, fake.search)

	mod, _ := structpb.NewStruct(map[string]any{"id": 42, "login": "bob@example.com", "password": "newpass"})
	_, err = client.Modify(ctx, mod)
	require.NoError(t, err)
	assert.EqualValues(t, 42, fake.account.ID)
}

func TestE2E_FindCurrentUsesTokenLogin(t *testing.T) {
	fake := &fakeAccounts{}
	client := NewAccountsClient(startBufconn(t, fake))

	out, err := client.FindCurrent(outgoing(t, "bob", common.RoleUser), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "bob", out.AsMap()["login"])
	assert.Equal(t, "bob", fake.caller.Login)

	_, err = client.FindCurrent(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestE2E_NotFoundAndForbidden(t *testing.T) {
	fake := &fakeAccounts{err: common.ErrorNotFound}
	client := NewAccountsClient(startBufconn(t, fake))

	_, err := client.Find(outgoing(t, "root", common.RoleAdmin), wrapperspb.Int64(9))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.Delete(outgoing(t, "bob", common.RoleUser), wrapperspb.Int64(9))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestE2E_Health(t *testing.T) {
	conn := startBufconn(t, &fakeAccounts{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
